package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// ProductImagePath composes the object key for a product image upload.
func ProductImagePath(productID, fileName string) (string, error) {
	id, err := validateSegment("productID", productID)
	if err != nil {
		return "", err
	}
	name, err := validateFileName(fileName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products/%s/images/%s", id, name), nil
}

// PageAssetPath composes the object key for a static page asset.
func PageAssetPath(slug, fileName string) (string, error) {
	id, err := validateSegment("slug", slug)
	if err != nil {
		return "", err
	}
	name, err := validateFileName(fileName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("pages/%s/assets/%s", id, name), nil
}

// ObjectFromURL recovers the object key from a public download URL produced
// by Uploader.PublicURL ("https://storage.googleapis.com/{bucket}/{object}").
// Returns "" when the URL does not carry a bucket and object.
func ObjectFromURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	path := strings.TrimPrefix(parsed.EscapedPath(), "/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	object, err := url.PathUnescape(parts[1])
	if err != nil {
		return ""
	}
	return object
}

func validateSegment(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: %s is required", name)
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: %s contains invalid path characters", name)
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("storage: %s contains invalid traversal sequence", name)
	}
	return value, nil
}

func validateFileName(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: fileName is required")
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: fileName contains invalid path characters")
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("storage: fileName contains invalid traversal sequence")
	}
	return value, nil
}
