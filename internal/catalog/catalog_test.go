package catalog

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/ragd/internal/models"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `ProductID,ProductName,Description,Price
A,Pool,Db timeout connection pool exhausted,10
B,,UI button misaligned,
C,Cache,Cache eviction storm,30
`

var sampleSchema = Schema{IDColumn: "ProductID", TextColumn: "Description"}

func TestParseCSV_Normalize(t *testing.T) {
	table, err := Parse([]byte(sampleCSV), FormatCSV, "")
	if err != nil {
		t.Fatal(err)
	}
	records, err := Normalize(table, sampleSchema)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	b := records[1]
	if b.ID != "B" || b.Text != "UI button misaligned" {
		t.Errorf("unexpected record %+v", b)
	}
	if b.Payload["ProductName"] != models.MissingValue || b.Payload["Price"] != models.MissingValue {
		t.Errorf("blank cells should normalize to %q: %v", models.MissingValue, b.Payload)
	}
	if len(b.Payload) != 4 {
		t.Errorf("default payload should hold all columns, got %v", b.Payload)
	}
}

func TestNormalize_PayloadColumnsAndMaxRows(t *testing.T) {
	table, _ := Parse([]byte(sampleCSV), FormatCSV, "")
	s := sampleSchema
	s.PayloadColumns = []string{"ProductName", "Description"}
	s.MaxRows = 2
	records, err := Normalize(table, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("MaxRows not applied, got %d records", len(records))
	}
	if _, ok := records[0].Payload["Price"]; ok || len(records[0].Payload) != 2 {
		t.Errorf("unexpected payload %v", records[0].Payload)
	}
}

func TestNormalize_RaggedRowAndBlankID(t *testing.T) {
	table, err := Parse([]byte("ProductID,Description,Extra\nA,short\n"), FormatCSV, "")
	if err != nil {
		t.Fatal(err)
	}
	records, err := Normalize(table, Schema{IDColumn: "ProductID", TextColumn: "Description"})
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Payload["Extra"] != models.MissingValue {
		t.Errorf("absent cell should be %q, got %q", models.MissingValue, records[0].Payload["Extra"])
	}

	table, _ = Parse([]byte("ProductID,Description\nA,ok\n ,no id\n"), FormatCSV, "")
	_, err = Normalize(table, Schema{IDColumn: "ProductID", TextColumn: "Description"})
	var rowErr *RowError
	if !errors.As(err, &rowErr) || rowErr.Row != 3 {
		t.Fatalf("expected RowError for row 3, got %v", err)
	}
}

func TestNormalize_MissingColumns(t *testing.T) {
	table, _ := Parse([]byte(sampleCSV), FormatCSV, "")
	tests := []Schema{
		{IDColumn: "SKU", TextColumn: "Description"},
		{IDColumn: "ProductID", TextColumn: "Body"},
		{IDColumn: "ProductID", TextColumn: "Description", PayloadColumns: []string{"Color"}},
	}
	for _, s := range tests {
		if _, err := Normalize(table, s); err == nil {
			t.Errorf("expected error for schema %+v", s)
		}
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]string{
		{"ProductID", "ProductName", "Description"},
		{"A", "Pool", "Db timeout connection pool exhausted"},
		{"B", "", "UI button misaligned"},
	}
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			cellName, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cellName, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	table, err := Parse(buf.Bytes(), FormatXLSX, "")
	if err != nil {
		t.Fatal(err)
	}
	records, err := Normalize(table, sampleSchema)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].ID != "A" || records[1].Payload["ProductName"] != models.MissingValue {
		t.Errorf("unexpected records %+v", records)
	}

	if _, err := Parse(buf.Bytes(), FormatXLSX, "NoSuchSheet"); err == nil {
		t.Error("expected error for missing sheet")
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"catalog.csv", FormatCSV, false},
		{"dir/Catalog.XLSX", FormatXLSX, false},
		{"catalog.json", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatFor(%q) = %q, %v", tt.name, got, err)
		}
	}
}

func TestParseS3URI(t *testing.T) {
	bucket, key, ok := ParseS3URI("s3://catalogs/products/myntra.csv")
	if !ok || bucket != "catalogs" || key != "products/myntra.csv" {
		t.Errorf("got %q %q %v", bucket, key, ok)
	}
	for _, bad := range []string{"/tmp/a.csv", "s3://bucket", "s3:///key"} {
		if _, _, ok := ParseS3URI(bad); ok {
			t.Errorf("ParseS3URI(%q) should fail", bad)
		}
	}
}

type fakeObjects map[string][]byte

func (f fakeObjects) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	data, ok := f[bucket+"/"+key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return data, nil
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0644); err != nil {
		t.Fatal(err)
	}
	records, err := Load(ctx, Options{Source: path, Schema: sampleSchema}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("local: expected 3 records, got %d", len(records))
	}

	objects := fakeObjects{"bucket/products.csv": []byte(sampleCSV)}
	records, err = Load(ctx, Options{Source: "s3://bucket/products.csv", Schema: sampleSchema}, objects)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("s3: expected 3 records, got %d", len(records))
	}

	if _, err := Load(ctx, Options{Source: "s3://bucket/products.csv", Schema: sampleSchema}, nil); err == nil {
		t.Error("expected error for s3 source without client")
	}
	if _, err := Load(ctx, Options{Source: filepath.Join(t.TempDir(), "missing.csv"), Schema: sampleSchema}, nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewS3Source(t *testing.T) {
	if _, err := NewS3Source(S3Config{}); err == nil {
		t.Error("expected error for empty endpoint")
	}
	if _, err := NewS3Source(S3Config{Endpoint: "https://minio.local:9000", AccessKeyID: "id", SecretAccessKey: "secret"}); err != nil {
		t.Errorf("NewS3Source: %v", err)
	}
}
