package validation

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const code = "nadannya_poslug"

func TestPhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    string
		wantErr bool
	}{
		{name: "local with leading zero", raw: "0991234567", want: "+380991234567"},
		{name: "without plus", raw: "380991234567", want: "+380991234567"},
		{name: "canonical is stable", raw: "+380991234567", want: "+380991234567"},
		{name: "formatted", raw: "+38 (099) 123-45-67", want: "+380991234567"},
		{name: "nine digits", raw: "991234567", want: "+380991234567"},
		{name: "json number", raw: float64(380991234567), want: "+380991234567"},
		{name: "foreign number kept", raw: "+48 123 456 789 0", want: "+481234567890"},
		{name: "too short", raw: "12345", wantErr: true},
		{name: "not scalar", raw: []any{"0991234567"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Phone(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrganizationCode_LengthBoundary(t *testing.T) {
	for _, tt := range []struct {
		raw string
		ok  bool
	}{
		{"1234567", false},
		{"12345678", true},
		{"123456789", false},
		{"1234567890", true},
		{"12345678901", false},
		{"1234567a", false},
		{" 12345678 ", true},
	} {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := OrganizationCode(tt.raw)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Regexp(t, `^\d+$`, got)
		})
	}

	got, err := OrganizationCode(float64(12345678))
	require.NoError(t, err)
	assert.Equal(t, "12345678", got)
}

func TestIBAN(t *testing.T) {
	got, err := IBAN("ua12 3456 7890 1234 5678 9012 3456 7")
	require.NoError(t, err)
	assert.Equal(t, "UA123456789012345678901234567", got)

	_, err = IBAN("PL123456789012345678901234567")
	assert.EqualError(t, err, "IBAN має починатися з UA.")

	_, err = IBAN("UA1234")
	assert.EqualError(t, err, "IBAN має містити 29 символів. Ви ввели: 6.")
}

func TestFullName(t *testing.T) {
	got, err := FullName("  іванов   іван  іванович ")
	require.NoError(t, err)
	assert.Equal(t, "Іванов Іван Іванович", got)

	got, err = FullName("ПЕТРЕНКО ОЛЕНА")
	require.NoError(t, err)
	assert.Equal(t, "Петренко Олена", got)

	_, err = FullName("Іванов")
	assert.Error(t, err)
}

func TestCity(t *testing.T) {
	got, err := City(" kyiv ")
	require.NoError(t, err)
	assert.Equal(t, "Kyiv", got)

	got, err = City("львів")
	require.NoError(t, err)
	assert.Equal(t, "Львів", got)

	got, err = City("смт. Ворохта")
	require.NoError(t, err)
	assert.Equal(t, "Смт. Ворохта", got)
}

func TestInteger(t *testing.T) {
	for raw, want := range map[any]string{
		"до 5 числа":       "5",
		"15":               "15",
		float64(10):        "10",
		"протягом 05 днів": "5",
		"0":                "0",
		" кінець місяця ":  "кінець місяця",
	} {
		got, err := Integer(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := Integer("   ")
	assert.EqualError(t, err, "Вкажіть число або строк.")
}

func TestValidateAll_AcceptsTermsWithoutDigits(t *testing.T) {
	res := Default().ValidateAll(code, map[string]any{
		"money_transfer_deadline": "в день підписання акту",
		"date_act_signed":         "останній робочий день місяця",
	})

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Equal(t, map[string]string{
		"money_transfer_deadline": "в день підписання акту",
		"date_act_signed":         "останній робочий день місяця",
	}, res.Values)
}

func TestMinLength(t *testing.T) {
	_, err := MinLength(2)("A")
	assert.EqualError(t, err, "Мінімальна довжина: 2 символи.")

	got, err := MinLength(2)(" ТОВ Ромашка ")
	require.NoError(t, err)
	assert.Equal(t, "ТОВ Ромашка", got)
}

func TestRules_AreIdempotent(t *testing.T) {
	inputs := map[string]any{
		"city":                     "kyiv",
		"enterprise":               "ТОВ Ромашка",
		"full_name_customer":       "іванов іван",
		"customer_phone_number":    "0991234567",
		"customer_edrpou":          "12345678",
		"customer_iban":            "ua 123456789012345678901234567",
		"date_act_signed":          "до 15 числа",
		"contract_validity_period": " 1 рік ",
	}
	reg := Default()
	first := reg.ValidateAll(code, inputs)
	require.True(t, first.Valid)

	again := make(map[string]any, len(first.Values))
	for k, v := range first.Values {
		again[k] = v
	}
	second := reg.ValidateAll(code, again)
	require.True(t, second.Valid)

	if diff := cmp.Diff(first.Values, second.Values); diff != "" {
		t.Fatalf("normalization is not idempotent (-first +second):\n%s", diff)
	}
}

func TestValidateAll_PartialSubmissionNeverErrors(t *testing.T) {
	res := Default().ValidateAll(code, map[string]any{"city": "kyiv"})

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Equal(t, map[string]string{"city": "Kyiv"}, res.Values)
}

func TestValidateAll_ReportsOnlySuppliedMalformedFields(t *testing.T) {
	res := Default().ValidateAll(code, map[string]any{
		"City":             "Одеса",
		"customer_edrpou":  "1234567",
		"customer_iban":    "DE89370400440532013000",
		"performer_edrpou": "",
		"enterprise":       nil,
	})

	assert.False(t, res.Valid)
	want := []FieldError{
		{Field: "customer_edrpou", Message: "Код має містити 8 (ЄДРПОУ) або 10 (ІПН) цифр. Ви ввели: 7."},
		{Field: "customer_iban", Message: "IBAN має починатися з UA."},
	}
	if diff := cmp.Diff(want, res.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[string]string{"city": "Одеса"}, res.Values)
}

func TestValidateAll_AliasesAndExtras(t *testing.T) {
	res := Default().ValidateAll(code, map[string]any{
		"customer_unified_state_register_of_organizations": "12345678",
		"date":  " 15.01.2025 ",
		"notes": map[string]any{"nested": true},
	})

	assert.True(t, res.Valid)
	assert.Equal(t, map[string]string{
		"customer_edrpou": "12345678",
		"date":            "15.01.2025",
	}, res.Values)
}

func TestValidateAll_UnknownTypeIsAlwaysValid(t *testing.T) {
	res := Default().ValidateAll("unknown", map[string]any{
		"customer_edrpou": "1",
		"amount":          json.Number("12.50"),
		"tags":            []any{"a"},
	})

	assert.True(t, res.Valid)
	assert.Equal(t, map[string]string{"customer_edrpou": "1", "amount": "12.50"}, res.Values)
}

func TestNormalize(t *testing.T) {
	reg := Default()

	got, err := reg.Normalize(code, "Customer_Phone_Number", "0991234567")
	require.NoError(t, err)
	assert.Equal(t, "+380991234567", got)

	got, err = reg.Normalize("Надання_послуг", "performer_unified_state_register_of_organizations", "1234567890")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", got)

	_, err = reg.Normalize(code, "customer_edrpou", "123")
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "customer_edrpou", verr.Fields[0].Field)
	assert.Contains(t, err.Error(), "validation failed: customer_edrpou:")

	_, err = reg.Normalize(code, "city", "  ")
	assert.Error(t, err)
}

func TestRegistry_Fields(t *testing.T) {
	reg := Default()
	assert.True(t, reg.Has(code))
	assert.True(t, reg.Has("Надання_послуг"))
	assert.False(t, reg.Has("other"))
	assert.Len(t, reg.Fields(code), 15)
	assert.Nil(t, reg.Fields("other"))
}
