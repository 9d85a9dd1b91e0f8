package model

import "testing"

func TestParseSortField(t *testing.T) {
	for _, f := range SortFields {
		got, ok := ParseSortField(string(f))
		if !ok || got != f {
			t.Errorf("ParseSortField(%q) = %q, %v", f, got, ok)
		}
	}
	if _, ok := ParseSortField("email"); ok {
		t.Error("ParseSortField(email) должен вернуть false")
	}
	if _, ok := ParseSortField("LASTNAME"); ok {
		t.Error("имя поля чувствительно к регистру")
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in   string
		want SortOrder
		ok   bool
	}{
		{"asc", OrderAsc, true},
		{"DESC", OrderDesc, true},
		{"Desc", OrderDesc, true},
		{"up", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSortOrder(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSortOrder(%q) = %q, %v; ожидалось %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestUserFilter_Normalize(t *testing.T) {
	got := UserFilter{Page: -1, Sort: "email", Order: "sideways", Search: "jo"}.Normalize()
	want := UserFilter{Page: 1, Limit: 20, Sort: SortLastName, Order: OrderAsc, Search: "jo"}
	if got != want {
		t.Errorf("Normalize() = %+v, ожидалось %+v", got, want)
	}

	got = UserFilter{Page: 3, Limit: 50, Sort: SortAge, Order: "desc"}.Normalize()
	if got.Page != 3 || got.Limit != 50 || got.Sort != SortAge || got.Order != OrderDesc {
		t.Errorf("Normalize() изменил корректные значения: %+v", got)
	}
}

func TestSortField_Accessors(t *testing.T) {
	u := &User{FirstName: "Ann", Age: 42}
	if v, ok := SortFirstName.StringValue(u); !ok || v != "Ann" {
		t.Errorf("StringValue = %q, %v", v, ok)
	}
	if _, ok := SortAge.StringValue(u); ok {
		t.Error("age не строковое поле")
	}
	if v, ok := SortAge.NumberValue(u); !ok || v != 42 {
		t.Errorf("NumberValue = %d, %v", v, ok)
	}
	if _, ok := SortCreatedAt.TimeValue(u); !ok {
		t.Error("createdAt — поле времени")
	}
}
