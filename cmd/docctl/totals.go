package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/pricing"
)

var totalsCmd = &cobra.Command{
	Use:   "totals FILE",
	Short: "Calcula subtotal, impuestos y total de un documento descrito en JSON",
	Long: `Lee un archivo JSON con la moneda y las líneas del documento y devuelve los
totales con la misma aritmética que usa la API.

Formato de entrada:
  {
    "currency": {"code": "EUR", "digits": 2},
    "items": [
      {"quantity": "2", "unit_price": "100", "discount": "10", "discount_type": "PERCENTAGE",
       "taxes": [{"label": "IVA 19%", "is_rate": true, "value": "19"}]}
    ]
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runTotals,
}

type totalsInput struct {
	Currency *struct {
		Code   string `json:"code"`
		Digits *int   `json:"digits"`
	} `json:"currency"`
	Items []struct {
		Quantity     decimal.Decimal     `json:"quantity"`
		UnitPrice    decimal.Decimal     `json:"unit_price"`
		Discount     decimal.Decimal     `json:"discount"`
		DiscountType entity.DiscountType `json:"discount_type"`
		Taxes        []struct {
			Label  string          `json:"label"`
			IsRate bool            `json:"is_rate"`
			Value  decimal.Decimal `json:"value"`
		} `json:"taxes"`
	} `json:"items"`
}

func runTotals(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("leer %s: %w", args[0], err)
	}
	var in totalsInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("JSON inválido: %w", err)
	}

	var currency *entity.Currency
	if in.Currency != nil {
		currency = &entity.Currency{ID: in.Currency.Code, Code: in.Currency.Code, Digits: in.Currency.Digits}
	}
	lines := make([]entity.LineItem, 0, len(in.Items))
	for i, it := range in.Items {
		line := entity.LineItem{
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Discount:     it.Discount,
			DiscountType: it.DiscountType,
		}
		if line.DiscountType == "" {
			line.DiscountType = entity.DiscountPercentage
		}
		for j, t := range it.Taxes {
			line.Taxes = append(line.Taxes, entity.TaxEntry{TaxID: fmt.Sprintf("t%d", j), Label: t.Label, IsRate: t.IsRate, Value: t.Value})
		}
		if err := pricing.ValidateLine(line); err != nil {
			return fmt.Errorf("línea %d: %w", i+1, err)
		}
		lines = append(lines, line)
	}

	totals := pricing.Compute(lines, currency)
	log.Debug().Int("lines", len(lines)).Int32("precision", totals.Precision).Msg("totales calculados")

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(totals)
}
