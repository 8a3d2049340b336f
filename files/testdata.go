package files

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"incidentflow/core"
)

const (
	fallbackRecordCount = 5
	maxJSONRecords      = 5
	maxRowRecords       = 10
)

var unitPrice = decimal.RequireFromString("25.99")

// TestData generates sample users or orders as json, csv or sql.
// RecordCount is a string so it can carry a workflow placeholder; anything that is not
// a positive integer falls back to five records.
type TestData struct {
	DataType string `validate:"required"`
	// RecordCount defaults to 100
	RecordCount string
	// OutputFormat defaults to json
	OutputFormat string `validate:"omitempty,oneof=json csv sql"`
	// Locale defaults to en_US
	Locale string
}

func (d TestData) recordCount() int {
	n, err := strconv.Atoi(valueOr(d.RecordCount, "100"))
	if err != nil || n < 1 {
		return fallbackRecordCount
	}
	return n
}

func (d TestData) Files() ([]File, error) {
	if err := core.ValidateModel(d); err != nil {
		return nil, err
	}

	format := valueOr(d.OutputFormat, "json")
	limit := maxRowRecords
	if format == "json" {
		limit = maxJSONRecords
	}
	n := min(d.recordCount(), limit)

	var (
		content string
		err     error
	)
	switch d.DataType {
	case "users":
		content, err = renderRecords(format, "users", userRecords(n))
	case "orders":
		content, err = renderRecords(format, "orders", orderRecords(n))
	default:
		content = fmt.Sprintf(`# Custom test data for %[1]s
# Generated %[2]s records
# Format: %[3]s

# Add your custom test data structure here
# This is a template file for %[1]s data generation
`, d.DataType, valueOr(d.RecordCount, "100"), format)
	}
	if err != nil {
		return nil, err
	}

	return []File{{
		Destination: fmt.Sprintf("test_data_%s.%s", d.DataType, format),
		Content:     content,
	}}, nil
}

func (d TestData) Command() (string, error) {
	fs, err := d.Files()
	if err != nil {
		return "", err
	}
	return WriteCommand(fs[0], Preview{
		Heading: "🧪 GENERATING TEST DATA",
		Details: []string{
			"Data Type: " + d.DataType,
			"Record Count: " + valueOr(d.RecordCount, "100"),
			"Format: " + valueOr(d.OutputFormat, "json"),
			"Locale: " + valueOr(d.Locale, "en_US"),
		},
		Action:  "📊 Creating test dataset...",
		Subject: "Test data",
	}), nil
}

// record is one generated row: the JSON document plus its flat column values
type record struct {
	doc     any
	columns []string
	values  []any
}

type address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country,omitempty"`
}

type user struct {
	ID        int     `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Address   address `json:"address"`
	CreatedAt string  `json:"created_at"`
	Status    string  `json:"status"`
	Role      string  `json:"role"`
}

type orderItem struct {
	ProductID int         `json:"product_id"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
}

type order struct {
	ID              int         `json:"id"`
	UserID          int         `json:"user_id"`
	OrderNumber     string      `json:"order_number"`
	Status          string      `json:"status"`
	TotalAmount     json.Number `json:"total_amount"`
	Currency        string      `json:"currency"`
	Items           []orderItem `json:"items"`
	ShippingAddress address     `json:"shipping_address"`
	OrderDate       string      `json:"order_date"`
	ShippedDate     string      `json:"shipped_date"`
}

func userRecords(n int) []record {
	records := make([]record, 0, n)
	for i := 0; i < n; i++ {
		u := user{
			ID:        i + 1,
			FirstName: fmt.Sprintf("John%d", i+1),
			LastName:  fmt.Sprintf("Doe%d", i+1),
			Email:     fmt.Sprintf("john%d@example.com", i+1),
			Phone:     fmt.Sprintf("+1-555-%04d", 100+i),
			Address: address{
				Street:  fmt.Sprintf("%d Main St", 100+i),
				City:    "Anytown",
				State:   "CA",
				Zip:     fmt.Sprintf("%05d", 90000+i),
				Country: "US",
			},
			CreatedAt: fmt.Sprintf("2024-01-%02dT10:00:00Z", i+1),
			Status:    "active",
			Role:      "user",
		}
		records = append(records, record{
			doc:     u,
			columns: []string{"id", "first_name", "last_name", "email", "phone", "street", "city", "state", "zip", "country", "created_at", "status", "role"},
			values: []any{u.ID, u.FirstName, u.LastName, u.Email, u.Phone, u.Address.Street, u.Address.City,
				u.Address.State, u.Address.Zip, u.Address.Country, u.CreatedAt, u.Status, u.Role},
		})
	}
	return records
}

func orderRecords(n int) []record {
	records := make([]record, 0, n)
	for i := 0; i < n; i++ {
		total := unitPrice.Mul(decimal.NewFromInt(int64(i + 1)))
		o := order{
			ID:          i + 1,
			UserID:      (i % 10) + 1,
			OrderNumber: fmt.Sprintf("ORD-%d", 1000+i),
			Status:      "completed",
			TotalAmount: json.Number(total.StringFixed(2)),
			Currency:    "USD",
			Items: []orderItem{{
				ProductID: (i % 5) + 1,
				Name:      fmt.Sprintf("Product %d", (i%5)+1),
				Quantity:  i + 1,
				Price:     json.Number(unitPrice.StringFixed(2)),
			}},
			ShippingAddress: address{
				Street: fmt.Sprintf("%d Main St", 100+i),
				City:   "Anytown",
				State:  "CA",
				Zip:    fmt.Sprintf("%05d", 90000+i),
			},
			OrderDate:   fmt.Sprintf("2024-01-%02dT10:00:00Z", i+1),
			ShippedDate: fmt.Sprintf("2024-01-%02dT10:00:00Z", i+2),
		}
		records = append(records, record{
			doc:     o,
			columns: []string{"id", "user_id", "order_number", "status", "total_amount", "currency", "order_date", "shipped_date"},
			values:  []any{o.ID, o.UserID, o.OrderNumber, o.Status, total, o.Currency, o.OrderDate, o.ShippedDate},
		})
	}
	return records
}

func renderRecords(format, table string, records []record) (string, error) {
	switch format {
	case "csv":
		return recordsCSV(records)
	case "sql":
		return recordsSQL(table, records), nil
	default:
		docs := make([]any, 0, len(records))
		for _, r := range records {
			docs = append(docs, r.doc)
		}
		out, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal test data: %w", err)
		}
		return string(out) + "\n", nil
	}
}

func recordsCSV(records []record) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for i, r := range records {
		if i == 0 {
			if err := w.Write(r.columns); err != nil {
				return "", err
			}
		}
		row := make([]string, 0, len(r.values))
		for _, v := range r.values {
			if d, ok := v.(decimal.Decimal); ok {
				row = append(row, d.StringFixed(2))
				continue
			}
			row = append(row, fmt.Sprint(v))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write test data csv: %w", err)
	}
	return buf.String(), nil
}

func sqlLiteral(v any) string {
	switch val := v.(type) {
	case int:
		return strconv.Itoa(val)
	case decimal.Decimal:
		return val.StringFixed(2)
	default:
		s := fmt.Sprint(val)
		// created_at style timestamps go in as "2024-01-01 10:00:00"
		if len(s) == 20 && strings.HasSuffix(s, "Z") && s[10] == 'T' {
			s = s[:10] + " " + s[11:19]
		}
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
}

// recordsSQL renders one INSERT statement; the id column is left to the database
func recordsSQL(table string, records []record) string {
	if len(records) == 0 {
		return fmt.Sprintf("-- Test data for %s table\n-- Generated 0 records\n", table)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "-- Test data for %s table\n-- Generated %d records\n\n", table, len(records))
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES\n", table, strings.Join(records[0].columns[1:], ", "))
	for i, r := range records {
		values := make([]string, 0, len(r.values)-1)
		for _, v := range r.values[1:] {
			values = append(values, sqlLiteral(v))
		}
		sep := ","
		if i == len(records)-1 {
			sep = ";"
		}
		fmt.Fprintf(&sb, "(%s)%s\n", strings.Join(values, ", "), sep)
	}
	return sb.String()
}
