package bridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// orderItem is one line of an order as the backend expects it.
type orderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// checkClientID validates a client ID and greets the returning customer.
func (b *Bridge) checkClientID(ctx context.Context, args callArgs) (string, error) {
	clientID, err := args.stringArg("clientId")
	if err != nil {
		return "", err
	}
	b.log.Info("checking client ID", "client_id", clientID)

	var user struct {
		Username string `json:"username"`
	}
	if err := b.client.Get(ctx, "/users/search/"+clientID, nil, &user); err != nil {
		if isNotFound(err) {
			return fmt.Sprintf("Client ID %s not found. Please provide a valid client ID.", clientID), nil
		}
		return fmt.Sprintf("Error checking client ID '%s': %v", clientID, err), nil
	}
	return fmt.Sprintf("Welcome back, %s! Your client ID %s is valid. How can I help you today?", user.Username, clientID), nil
}

// searchProducts runs a catalog search and renders a numbered pick list.
func (b *Bridge) searchProducts(ctx context.Context, args callArgs) (string, error) {
	query, err := args.stringArg("query")
	if err != nil {
		return "", err
	}
	query = strings.TrimSpace(query)
	b.log.Info("searching products", "query", query)

	var products []struct {
		ID             string  `json:"_id"`
		Name           string  `json:"name"`
		Price          float64 `json:"price"`
		RelevanceScore float64 `json:"relevanceScore"`
	}
	if err := b.client.Post(ctx, "/products/search", map[string]string{"query": query}, &products); err != nil {
		return fmt.Sprintf("Error searching products: %v. Please try again or contact support if the problem persists.", err), nil
	}
	if len(products) == 0 {
		return fmt.Sprintf("No products found matching '%s'. Please try again with different keywords.", query), nil
	}

	lines := make([]string, 0, len(products))
	for i, p := range products {
		line := fmt.Sprintf("%d. %s - $%s (ID: %s)", i+1, p.Name, formatPrice(p.Price), p.ID)
		if p.RelevanceScore != 0 {
			line += fmt.Sprintf(" (Relevance: %.1f%%)", p.RelevanceScore*100)
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf("Here are the products I found using vector similarity + text search for '%s':\n\n%s\n\nPlease select a product by saying its number or name.",
		query, strings.Join(lines, "\n")), nil
}

// createOrder places an order with one or more line items.
func (b *Bridge) createOrder(ctx context.Context, args callArgs) (string, error) {
	clientID, err := args.stringArg("clientId")
	if err != nil {
		return "", err
	}
	var items []orderItem
	if err := args.decode("products", &items); err != nil {
		return "", err
	}
	return b.placeOrder(ctx, clientID, items)
}

// createSingleProductOrder is the one-line-item convenience variant.
func (b *Bridge) createSingleProductOrder(ctx context.Context, args callArgs) (string, error) {
	clientID, err := args.stringArg("clientId")
	if err != nil {
		return "", err
	}
	productID, err := args.stringArg("productId")
	if err != nil {
		return "", err
	}
	quantity, err := args.intArg("quantity")
	if err != nil {
		return "", err
	}
	return b.placeOrder(ctx, clientID, []orderItem{{ProductID: productID, Quantity: quantity}})
}

// placeOrder posts the order. The backend keys orders by numeric client ID
// even though the voice pipeline carries it as a string.
func (b *Bridge) placeOrder(ctx context.Context, clientID string, items []orderItem) (string, error) {
	b.log.Info("creating order", "client_id", clientID, "items", len(items))

	numericID, err := strconv.Atoi(clientID)
	if err != nil {
		return fmt.Sprintf("Error creating order: client ID %q is not numeric", clientID), nil
	}

	var order struct {
		ID string `json:"_id"`
	}
	body := map[string]any{"clientId": numericID, "products": items}
	if err := b.client.Post(ctx, "/orders", body, &order); err != nil {
		return fmt.Sprintf("Error creating order: %v", err), nil
	}

	summary := make([]string, 0, len(items))
	for _, it := range items {
		summary = append(summary, fmt.Sprintf("%dx product ID %s", it.Quantity, it.ProductID))
	}
	return fmt.Sprintf("Order created successfully! Order ID: %s with %s. Would you like me to finish the order now?",
		order.ID, strings.Join(summary, ", ")), nil
}

// finishOrder finalises an order with delivery details.
func (b *Bridge) finishOrder(ctx context.Context, args callArgs) (string, error) {
	orderID, err := args.stringArg("orderId")
	if err != nil {
		return "", err
	}
	date, err := args.stringArg("date")
	if err != nil {
		return "", err
	}
	address, err := args.stringArg("address")
	if err != nil {
		return "", err
	}
	b.log.Info("finishing order", "order_id", orderID)

	body := map[string]string{"date": date, "address": address}
	if err := b.client.Post(ctx, "/orders/finish/"+orderID, body, nil); err != nil {
		if isNotFound(err) {
			return fmt.Sprintf("Order %s not found. Please check the order ID and try again.", orderID), nil
		}
		return fmt.Sprintf("Error finishing order: %v", err), nil
	}
	return fmt.Sprintf("Order %s has been finished successfully! It will be delivered to %s on %s. Is there anything else I can help you with?",
		orderID, address, date), nil
}

// ordersByClientID lists a client's orders.
func (b *Bridge) ordersByClientID(ctx context.Context, args callArgs) (string, error) {
	clientID, err := args.stringArg("clientId")
	if err != nil {
		return "", err
	}
	b.log.Info("listing orders", "client_id", clientID)

	var orders []struct {
		ID     string  `json:"_id"`
		Status string  `json:"status"`
		Total  float64 `json:"total"`
	}
	if err := b.client.Get(ctx, "/orders/user/"+clientID, nil, &orders); err != nil {
		if isNotFound(err) {
			return fmt.Sprintf("Client ID %s not found. Please provide a valid client ID.", clientID), nil
		}
		return fmt.Sprintf("Error retrieving orders: %v", err), nil
	}
	if len(orders) == 0 {
		return fmt.Sprintf("No orders found for client ID %s.", clientID), nil
	}

	lines := make([]string, 0, len(orders))
	for i, o := range orders {
		line := fmt.Sprintf("%d. Order ID: %s", i+1, o.ID)
		if o.Status != "" {
			line += fmt.Sprintf(" - Status: %s", o.Status)
		}
		if o.Total != 0 {
			line += fmt.Sprintf(" - Total: $%s", formatPrice(o.Total))
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf("I found %d order(s) for client ID %s:\n\n%s", len(orders), clientID, strings.Join(lines, "\n")), nil
}

// formatPrice renders a price the way the backend stores it, without
// trailing zeros ("19.99", "5").
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
