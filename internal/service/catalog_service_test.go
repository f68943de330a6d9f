package service

import (
	"reflect"
	"testing"

	"github.com/xela07ax/shopcore/internal/domain"
)

func TestGroupProductsCollapsesJoinRows(t *testing.T) {
	rows := []domain.ProductRow{
		{ProductID: 1, Price: 25, Color: "red", Size: "M", Stock: 3, Category: "shirts"},
		{ProductID: 1, Price: 25, Color: "red", Size: "L", Stock: 1, Category: "shirts"},
		{ProductID: 1, Price: 25, Color: "blue", Size: "M", Stock: 7, Category: "sale"},
		{ProductID: 2, Price: 90, Color: "black", Size: "42", Stock: 2, Category: "shoes"},
	}

	got := GroupProducts(rows)
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}

	first := got[0]
	if first.ProductID != 1 || first.Price != 25 {
		t.Fatalf("unexpected first product: %+v", first)
	}
	if !reflect.DeepEqual(first.Categories, []string{"shirts", "sale"}) {
		t.Fatalf("categories not deduplicated in order: %v", first.Categories)
	}
	wantOpts := domain.OptionSet{
		"red":  {"M": 3, "L": 1},
		"blue": {"M": 7},
	}
	if !reflect.DeepEqual(first.Options, wantOpts) {
		t.Fatalf("options mismatch: got %v want %v", first.Options, wantOpts)
	}

	if got[1].ProductID != 2 {
		t.Fatalf("input order not preserved: %+v", got[1])
	}
}

func TestGroupProductsSkipsEmptyOptionRows(t *testing.T) {
	// LEFT JOIN дает одну строку с пустым цветом для товара без опций
	rows := []domain.ProductRow{
		{ProductID: 5, Price: 10, Category: "new"},
	}

	got := GroupProducts(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 product, got %d", len(got))
	}
	if len(got[0].Options) != 0 {
		t.Fatalf("expected no options, got %v", got[0].Options)
	}
	if !reflect.DeepEqual(got[0].Categories, []string{"new"}) {
		t.Fatalf("unexpected categories: %v", got[0].Categories)
	}
}

func TestGroupProductsEmptyInput(t *testing.T) {
	if got := GroupProducts(nil); len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}
