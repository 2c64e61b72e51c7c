package storage

import "testing"

func TestProductImagePath(t *testing.T) {
	path, err := ProductImagePath("prod-123", "hero.webp")
	if err != nil {
		t.Fatalf("ProductImagePath: %v", err)
	}
	if path != "products/prod-123/images/hero.webp" {
		t.Errorf("path = %q", path)
	}
}

func TestProductImagePathRejectsTraversal(t *testing.T) {
	cases := []struct {
		name      string
		productID string
		fileName  string
	}{
		{"empty product", "", "hero.webp"},
		{"empty file", "prod-123", ""},
		{"slash in product", "prod/123", "hero.webp"},
		{"traversal in file", "prod-123", "..secret"},
		{"backslash in file", "prod-123", "a\\b.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ProductImagePath(tc.productID, tc.fileName); err == nil {
				t.Errorf("ProductImagePath(%q, %q) succeeded, want error", tc.productID, tc.fileName)
			}
		})
	}
}

func TestObjectFromURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"plain path", "https://storage.googleapis.com/shop-media/products/prod-1/images/kit.png", "products/prod-1/images/kit.png"},
		{"escaped path", "https://storage.googleapis.com/shop-media/products%2Fprod-1%2Fimages%2Fkit.png", "products/prod-1/images/kit.png"},
		{"bucket only", "https://storage.googleapis.com/shop-media", ""},
		{"empty", "", ""},
		{"not a url", "::::", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ObjectFromURL(tc.url); got != tc.want {
				t.Errorf("ObjectFromURL(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestContentTypeAllowed(t *testing.T) {
	allowed := []string{"image/*", "application/pdf"}
	if !contentTypeAllowed("image/png", allowed) {
		t.Error("image/png should be allowed by image/*")
	}
	if !contentTypeAllowed("application/pdf", allowed) {
		t.Error("application/pdf should be allowed")
	}
	if contentTypeAllowed("text/html", allowed) {
		t.Error("text/html should be rejected")
	}
}
