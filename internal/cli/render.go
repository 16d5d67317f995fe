package cli

import (
	"fmt"
	"io"
	"strings"

	"stockroom/internal/models"
)

const tableRule = "-------------------------------------------------------------"

// RenderInventory prints the stock table followed by the total value.
func RenderInventory(w io.Writer, inv models.Inventory) {
	if inv.Len() == 0 {
		fmt.Fprintln(w, "No inventory data found.")
		return
	}
	fmt.Fprintf(w, "%-12s | %-20s | %-8s | %-8s | %-6s\n", "CODE", "NAME", "PRICE", "QTY", "STATUS")
	fmt.Fprintln(w, tableRule)
	for _, it := range inv.Items {
		fmt.Fprintf(w, "%-12s | %-20s | %-8.2f | %-8.2f | %-6s\n",
			it.Code, it.Name, it.Price, it.Quantity, it.Status)
	}
	fmt.Fprintf(w, "\nTotal Inventory Value: %s\n", inv.TotalValue.StringFixed(2))
	if inv.LowCount > 0 {
		fmt.Fprintf(w, "%d item(s) at or below reorder level.\n", inv.LowCount)
	}
}

// RenderItem prints a single item as a card.
func RenderItem(w io.Writer, it models.Item) {
	fmt.Fprintf(w, "\nCode: %s\nName: %s\nPrice: %.2f\nQty: %.2f\nReorder: %d\n",
		it.Code, it.Name, it.Price, it.Quantity, it.ReorderLevel)
	if it.IsLow() {
		fmt.Fprintln(w, "Status: LOW, time to reorder.")
	}
}

func renderMenu(w io.Writer, withExport bool) {
	var b strings.Builder
	b.WriteString("========= INVENTORY MANAGEMENT SYSTEM =========\n")
	b.WriteString("1. Add Item\n")
	b.WriteString("2. View Stock\n")
	b.WriteString("3. Search Item\n")
	b.WriteString("4. Update Item\n")
	b.WriteString("5. Stock In\n")
	b.WriteString("6. Stock Out\n")
	b.WriteString("7. Delete Item\n")
	if withExport {
		b.WriteString("8. Export Report\n")
	}
	b.WriteString("0. Exit\n")
	b.WriteString("Select: ")
	fmt.Fprint(w, b.String())
}
