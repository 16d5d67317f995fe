package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"stockroom/internal/domain"
	"stockroom/internal/models"
	"stockroom/internal/store"

	"github.com/rs/zerolog"
)

const clearSequence = "\033[H\033[2J"

// ExportFunc writes a report and returns where it went.
type ExportFunc func(ctx context.Context) (string, error)

type Options struct {
	ClearScreen bool
	// AllowLongCodes passes over-long codes through to the inventory, which
	// truncates them, instead of rejecting them at the prompt.
	AllowLongCodes bool
	// Export enables menu entry 8 when set.
	Export ExportFunc
}

// Menu is the interactive front end over an inventory.
type Menu struct {
	inv    domain.Inventory
	in     *bufio.Reader
	out    io.Writer
	opts   Options
	logger *zerolog.Logger
}

func NewMenu(inv domain.Inventory, in io.Reader, out io.Writer, opts Options, logger *zerolog.Logger) *Menu {
	l := logger.With().Str("component", "menu").Logger()
	return &Menu{
		inv:    inv,
		in:     bufio.NewReader(in),
		out:    out,
		opts:   opts,
		logger: &l,
	}
}

// errInput marks input the menu itself rejected.
var errInput = errors.New("invalid input")

// Run shows the menu until the user picks Exit, input ends or ctx is done.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		m.clear()
		renderMenu(m.out, m.opts.Export != nil)

		line, err := m.readLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(m.out)
			return nil
		}
		if err != nil {
			return err
		}

		choice := strings.TrimSpace(line)
		if choice == "0" {
			return nil
		}

		err = m.dispatch(ctx, choice)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(m.out)
			return nil
		}
		if err != nil && !errors.Is(err, errInput) {
			m.logger.Debug().Err(err).Str("choice", choice).Msg("menu action failed")
		}
		if err := m.pause(); errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func (m *Menu) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case "1":
		return m.addItem(ctx)
	case "2":
		return m.viewStock(ctx)
	case "3":
		return m.searchItem(ctx)
	case "4":
		return m.updateItem(ctx)
	case "5":
		return m.stockTransaction(ctx, models.DirectionIn)
	case "6":
		return m.stockTransaction(ctx, models.DirectionOut)
	case "7":
		return m.deleteItem(ctx)
	case "8":
		if m.opts.Export != nil {
			return m.export(ctx)
		}
	}
	fmt.Fprintln(m.out, "Invalid choice!")
	return errInput
}

func (m *Menu) addItem(ctx context.Context) error {
	m.clear()
	fmt.Fprintln(m.out, "---ADD NEW ITEM---")

	code, err := m.promptCode("Item Code: ")
	if err != nil {
		return err
	}
	exists, err := m.inv.Exists(ctx, code)
	if err != nil {
		return m.fail(err)
	}
	if exists {
		return m.fail(store.ErrDuplicateKey)
	}

	name, err := m.prompt("Item Name: ")
	if err != nil {
		return err
	}
	price, err := m.promptFloat("Price: ")
	if err != nil {
		return err
	}
	qty, err := m.promptFloat("Quantity: ")
	if err != nil {
		return err
	}
	reorder, err := m.promptInt("Reorder Level: ")
	if err != nil {
		return err
	}

	item := models.Item{Code: code, Name: name, Price: price, Quantity: qty, ReorderLevel: reorder}
	if err := m.inv.Add(ctx, item); err != nil {
		return m.fail(err)
	}
	fmt.Fprintln(m.out, "Item added successfully!")
	if item.IsLow() {
		fmt.Fprintln(m.out, "Warning: quantity is at or below the reorder level.")
	}
	return nil
}

func (m *Menu) viewStock(ctx context.Context) error {
	m.clear()
	inv, err := m.inv.List(ctx)
	if err != nil {
		return m.fail(err)
	}
	RenderInventory(m.out, inv)
	return nil
}

func (m *Menu) searchItem(ctx context.Context) error {
	code, err := m.promptCode("Enter Item Code: ")
	if err != nil {
		return err
	}
	item, err := m.inv.Find(ctx, code)
	if err != nil {
		return m.fail(err)
	}
	RenderItem(m.out, item)
	return nil
}

func (m *Menu) updateItem(ctx context.Context) error {
	code, err := m.promptCode("Enter Item Code to Update: ")
	if err != nil {
		return err
	}
	// fail early instead of asking for values that cannot be applied
	if _, err := m.inv.Find(ctx, code); err != nil {
		return m.fail(err)
	}
	price, err := m.promptFloat("New Price: ")
	if err != nil {
		return err
	}
	reorder, err := m.promptInt("New Reorder Level: ")
	if err != nil {
		return err
	}
	if err := m.inv.Update(ctx, code, price, reorder); err != nil {
		return m.fail(err)
	}
	fmt.Fprintln(m.out, "Item updated.")
	return nil
}

func (m *Menu) stockTransaction(ctx context.Context, dir models.Direction) error {
	code, err := m.promptCode("Item Code: ")
	if err != nil {
		return err
	}
	qty, err := m.promptFloat("Quantity: ")
	if err != nil {
		return err
	}

	var item models.Item
	if dir == models.DirectionIn {
		item, err = m.inv.StockIn(ctx, code, qty)
	} else {
		item, err = m.inv.StockOut(ctx, code, qty)
	}
	if err != nil {
		return m.fail(err)
	}
	fmt.Fprintf(m.out, "Stock updated. %s now has %.2f on hand.\n", item.Code, item.Quantity)
	if item.IsLow() {
		fmt.Fprintf(m.out, "Warning: %s is at or below its reorder level (%d).\n", item.Code, item.ReorderLevel)
	}
	return nil
}

func (m *Menu) deleteItem(ctx context.Context) error {
	code, err := m.promptCode("Enter Item Code to Delete: ")
	if err != nil {
		return err
	}
	if err := m.inv.Delete(ctx, code); err != nil {
		return m.fail(err)
	}
	fmt.Fprintln(m.out, "Item deleted.")
	return nil
}

func (m *Menu) export(ctx context.Context) error {
	path, err := m.opts.Export(ctx)
	if err != nil {
		return m.fail(err)
	}
	fmt.Fprintf(m.out, "Report written to %s\n", path)
	return nil
}

func (m *Menu) fail(err error) error {
	fmt.Fprintln(m.out, ErrorMessage(err))
	return err
}

func (m *Menu) readLine() (string, error) {
	line, err := m.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	line, err := m.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptCode reads an item code: the first word of the line.
func (m *Menu) promptCode(label string) (string, error) {
	line, err := m.prompt(label)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		fmt.Fprintln(m.out, "Item code is required.")
		return "", errInput
	}
	code := fields[0]
	if len(code) > models.MaxCodeLen && !m.opts.AllowLongCodes {
		fmt.Fprintf(m.out, "Item code must be at most %d characters.\n", models.MaxCodeLen)
		return "", errInput
	}
	return code, nil
}

func (m *Menu) promptFloat(label string) (float32, error) {
	line, err := m.prompt(label)
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseFloat(line, 32)
	if perr != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		fmt.Fprintln(m.out, "Invalid input values!")
		return 0, errInput
	}
	return float32(v), nil
}

func (m *Menu) promptInt(label string) (int32, error) {
	line, err := m.prompt(label)
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseInt(line, 10, 32)
	if perr != nil || v < 0 {
		fmt.Fprintln(m.out, "Invalid input values!")
		return 0, errInput
	}
	return int32(v), nil
}

func (m *Menu) clear() {
	if m.opts.ClearScreen {
		fmt.Fprint(m.out, clearSequence)
	}
}

// pause waits for Enter so the result stays visible before the screen is
// cleared again.
func (m *Menu) pause() error {
	if !m.opts.ClearScreen {
		return nil
	}
	fmt.Fprint(m.out, "Press Enter to continue...")
	_, err := m.readLine()
	return err
}
