package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// setupBenchRepo creates a temp directory with marker calls spread over
// four languages.
func setupBenchRepo(b *testing.B) (dir string, cleanup func()) {
	b.Helper()
	dir, err := os.MkdirTemp("", "i18n-bench-*")
	if err != nil {
		b.Fatal(err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	writeBenchFile(b, filepath.Join(dir, "web", "orders.js"), `
export function OrderRow({ order }) {
  const title = gettext("Order");
  const items = ngettext("%d item", "%d items", order.items.length);
  return pgettext("orders", "Total") + ": " + order.total + title + items;
}
export const labels = [gettext("Pending"), gettext("Shipped"), gettext("Cancelled")];
`)
	writeBenchFile(b, filepath.Join(dir, "web", "cart.ts"), `
export function cartTitle(n: number): string {
  return ngettext("%d product in cart", "%d products in cart", n);
}
export const checkout = pgettext("button", "Checkout");
`)
	writeBenchFile(b, filepath.Join(dir, "api", "views.py"), `
def order_status(order):
    if order.cancelled:
        return gettext("Cancelled")
    return npgettext("status", "%d day left", "%d days left", order.days)
`)
	writeBenchFile(b, filepath.Join(dir, "cli", "main.go"), `package main

func usage() string {
	return gettext("Usage: shop [command]") + pgettext("help", "Commands")
}
`)
	return dir, cleanup
}

func writeBenchFile(b *testing.B, path, content string) {
	b.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		b.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		b.Fatal(err)
	}
}

func BenchmarkPipelineRun(b *testing.B) {
	repoDir, cleanup := setupBenchRepo(b)
	defer cleanup()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := Run(context.Background(), Options{Base: repoDir}); err != nil {
			b.Fatalf("Pipeline.Run: %v", err)
		}
	}
}

func BenchmarkPipelineRunScaled(b *testing.B) {
	for _, fileCount := range []int{5, 20, 50} {
		for _, workers := range []int{1, 0} {
			b.Run(fmt.Sprintf("files=%d/workers=%d", fileCount, workers), func(b *testing.B) {
				dir, err := os.MkdirTemp("", "i18n-bench-scale-*")
				if err != nil {
					b.Fatal(err)
				}
				defer os.RemoveAll(dir)

				for i := 0; i < fileCount; i++ {
					pkg := fmt.Sprintf("mod%d", i%5)
					name := fmt.Sprintf("file%d.js", i)
					content := fmt.Sprintf(`
export function view%d(n) {
  const a = gettext("Message %d");
  const b = ngettext("%%d row in table %d", "%%d rows in table %d", n);
  return pgettext("view%d", "Title") + a + b;
}
`, i, i, i, i, i%3)
					writeBenchFile(b, filepath.Join(dir, pkg, name), content)
				}

				b.ReportAllocs()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					if _, err := Run(context.Background(), Options{Base: dir, Workers: workers}); err != nil {
						b.Fatalf("Pipeline.Run: %v", err)
					}
				}
			})
		}
	}
}
