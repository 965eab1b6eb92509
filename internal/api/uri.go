package api

import (
	"fmt"
	"strings"

	"marketplace-service/internal/service"
)

// ProductURIResolver builds the stable external reference for a product.
// The services compare these for equality only; the route shape lives here
// with the rest of the transport layer.
func ProductURIResolver(baseURL string) service.URIResolver {
	base := strings.TrimRight(baseURL, "/")
	return func(productID string) string {
		return fmt.Sprintf("%s/marketplace/api/product/%s", base, productID)
	}
}
