package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/domain"
)

const maxImages = 10

// ListProducts fetches every product carrying the sync's vendor tag,
// following Link-header pagination.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	url := fmt.Sprintf("%s/products.json?vendor=%s&limit=250", c.baseURL, c.vendorTag)

	for url != "" {
		body, headers, err := c.do(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list products: %w", err)
		}

		var env productsEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("failed to parse products page: %w", err)
		}
		products = append(products, env.Products...)

		url = nextPageURL(headers)
	}

	c.logger.Info("Fetched Shopify products",
		zap.Int("count", len(products)),
		zap.String("vendor", c.vendorTag),
	)
	return products, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	url := fmt.Sprintf("%s/products/%d.json", c.baseURL, productID)

	body, _, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", productID, err)
	}

	var env productEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}
	return &env.Product, nil
}

// CreateProduct creates an active product from a feed candidate: title,
// vendor, tag, single variant with SKU/price/barcode, up to 10 images,
// description and structured metafields when the candidate carries them.
func (c *Client) CreateProduct(ctx context.Context, candidate domain.CandidateProduct) (*Product, error) {
	variant := Variant{
		SKU:                 candidate.SKU,
		Price:               candidate.Price,
		InventoryManagement: "shopify",
	}
	if ean := strings.TrimSpace(candidate.EAN); ean != "" {
		variant.Barcode = ean
	}

	payload := productPayload{
		Title:    candidate.Title,
		Vendor:   strings.TrimSpace(candidate.Brand),
		Tags:     c.vendorTag,
		Status:   "active",
		Variants: []Variant{variant},
	}
	if candidate.Description != "" {
		payload.BodyHTML = candidate.Description
	}
	payload.Images = buildImages(candidate.Images)
	payload.Metafields = buildMetafields(candidate)

	body, _, err := c.do(ctx, http.MethodPost, c.baseURL+"/products.json", createProductRequest{Product: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to create product %s: %w", candidate.SKU, err)
	}

	var env productEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse created product: %w", err)
	}

	c.logger.Info("Created product in Shopify",
		zap.String("sku", candidate.SKU),
		zap.Int64("shopify_product_id", env.Product.ID),
	)
	return &env.Product, nil
}

// UpdateProduct updates title, status, description and images, then the
// variant price. When variantID is zero the product is fetched first to
// find it; callers that already hold the product pass it to skip that
// lookup.
func (c *Client) UpdateProduct(ctx context.Context, productID, variantID int64, candidate domain.CandidateProduct) (*Product, error) {
	if variantID == 0 {
		existing, err := c.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if v := existing.FirstVariant(); v != nil {
			variantID = v.ID
		}
	}

	payload := productPayload{
		ID:     productID,
		Title:  candidate.Title,
		Status: "active",
	}
	if candidate.Description != "" {
		payload.BodyHTML = candidate.Description
	}
	payload.Images = buildImages(candidate.Images)

	url := fmt.Sprintf("%s/products/%d.json", c.baseURL, productID)
	body, _, err := c.do(ctx, http.MethodPut, url, createProductRequest{Product: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", productID, err)
	}

	if variantID != 0 {
		variantURL := fmt.Sprintf("%s/variants/%d.json", c.baseURL, variantID)
		req := updateVariantRequest{Variant: variantPayload{ID: variantID, Price: candidate.Price}}
		if _, _, err := c.do(ctx, http.MethodPut, variantURL, req); err != nil {
			return nil, fmt.Errorf("failed to update variant %d: %w", variantID, err)
		}
	}

	var env productEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse updated product: %w", err)
	}

	c.logger.Info("Updated product in Shopify",
		zap.String("sku", candidate.SKU),
		zap.Int64("shopify_product_id", productID),
	)
	return &env.Product, nil
}

// DeactivateProduct moves a product to draft status. It does not delete.
func (c *Client) DeactivateProduct(ctx context.Context, productID int64) error {
	payload := createProductRequest{Product: productPayload{ID: productID, Status: "draft"}}
	url := fmt.Sprintf("%s/products/%d.json", c.baseURL, productID)

	if _, _, err := c.do(ctx, http.MethodPut, url, payload); err != nil {
		return fmt.Errorf("failed to deactivate product %d: %w", productID, err)
	}

	c.logger.Info("Deactivated product in Shopify", zap.Int64("shopify_product_id", productID))
	return nil
}

// SetInventoryLevel sets the available quantity at the primary location.
func (c *Client) SetInventoryLevel(ctx context.Context, inventoryItemID int64, quantity int) error {
	locationID, err := c.getLocationID(ctx)
	if err != nil {
		return err
	}

	payload := setInventoryLevelRequest{
		LocationID:      locationID,
		InventoryItemID: inventoryItemID,
		Available:       quantity,
	}

	if _, _, err := c.do(ctx, http.MethodPost, c.baseURL+"/inventory_levels/set.json", payload); err != nil {
		return fmt.Errorf("failed to set inventory for item %d: %w", inventoryItemID, err)
	}

	c.logger.Debug("Set inventory level",
		zap.Int64("inventory_item_id", inventoryItemID),
		zap.Int("quantity", quantity),
	)
	return nil
}

// SetInventoryCost records the wholesale cost on the inventory item.
func (c *Client) SetInventoryCost(ctx context.Context, inventoryItemID int64, cost string) error {
	url := fmt.Sprintf("%s/inventory_items/%d.json", c.baseURL, inventoryItemID)
	payload := updateInventoryItemRequest{
		InventoryItem: inventoryItemPayload{ID: inventoryItemID, Cost: cost},
	}

	if _, _, err := c.do(ctx, http.MethodPut, url, payload); err != nil {
		return fmt.Errorf("failed to set cost for item %d: %w", inventoryItemID, err)
	}

	c.logger.Debug("Set inventory cost",
		zap.Int64("inventory_item_id", inventoryItemID),
		zap.String("cost", cost),
	)
	return nil
}

func buildImages(urls []string) []Image {
	if len(urls) == 0 {
		return nil
	}
	if len(urls) > maxImages {
		urls = urls[:maxImages]
	}
	images := make([]Image, 0, len(urls))
	for _, u := range urls {
		images = append(images, Image{Src: u})
	}
	return images
}

func buildMetafields(candidate domain.CandidateProduct) []Metafield {
	var metafields []Metafield

	if brand := strings.TrimSpace(candidate.Brand); brand != "" {
		metafields = append(metafields, Metafield{
			Namespace: "wimood",
			Key:       "brand",
			Value:     brand,
			Type:      "single_line_text_field",
		})
	}
	if ean := strings.TrimSpace(candidate.EAN); ean != "" {
		metafields = append(metafields, Metafield{
			Namespace: "wimood",
			Key:       "ean",
			Value:     ean,
			Type:      "single_line_text_field",
		})
	}
	if cost := strings.TrimSpace(candidate.WholesalePrice); cost != "" && cost != "0.00" {
		metafields = append(metafields, Metafield{
			Namespace: "wimood",
			Key:       "wholesale_price",
			Value:     cost,
			Type:      "single_line_text_field",
		})
	}
	if len(candidate.Specs) > 0 {
		specs, err := json.Marshal(candidate.Specs)
		if err == nil {
			metafields = append(metafields, Metafield{
				Namespace: "wimood",
				Key:       "specs",
				Value:     string(specs),
				Type:      "json",
			})
		}
	}

	return metafields
}
