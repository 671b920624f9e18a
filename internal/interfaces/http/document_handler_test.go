package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Documentos-api/internal/application/document"
	"github.com/jhoicas/Documentos-api/internal/application/dto"
	"github.com/jhoicas/Documentos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Documentos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Documentos-api/internal/infrastructure/realtime"
	apphttp "github.com/jhoicas/Documentos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Documentos-api/pkg/jwt"
	"github.com/jhoicas/Documentos-api/pkg/logger"
)

var fixedNow = time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC)

// newAPI arma la API completa sobre repositorios en memoria.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	app, _ := newAPIWithHub(t)
	return app
}

func newAPIWithHub(t *testing.T) (*fiber.App, *realtime.Hub) {
	t.Helper()
	store := memory.NewStore()
	store.SeedDefaults()

	hub := realtime.NewHub()
	docs := memory.NewDocumentRepository(store)
	firms := memory.NewFirmRepository(store)
	currencies := memory.NewCurrencyRepository(store)
	taxes := memory.NewTaxRepository(store)
	articles := memory.NewArticleRepository(store)

	uc := document.NewUseCase(memory.NewTxRunner(store), docs, currencies, taxes, articles, firms, hub, nil, 3).
		WithClock(func() time.Time { return fixedNow })

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Documents:   uc,
		PDF:         document.NewPDFUseCase(docs, firms, pdf.NewMarotoPDFGenerator(), "Empresa Demo", 3),
		Sequences:   document.NewSequenceUseCase(memory.NewTxRunner(store), memory.NewSequenceRepository(store), hub),
		References:  document.NewReferenceUseCase(currencies, taxes, articles),
		Firms:       document.NewFirmUseCase(firms),
		Hub:         hub,
		Log:         logger.Nop(),
		JWTSecret:   testJWTSecret,
		ServiceName: "documentos-api",
	})
	return app, hub
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func quoteBody() map[string]any {
	return map[string]any{
		"currency_id": "EUR",
		"object":      "Mantenimiento anual",
		"items": []map[string]any{{
			"title":         "Horas",
			"quantity":      "2",
			"unit_price":    "100",
			"discount":      "10",
			"discount_type": "PERCENTAGE",
			"tax_ids":       []string{"iva19"},
		}},
	}
}

func createQuote(t *testing.T, app *fiber.App, action string) dto.DocumentResponse {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/quotations?action="+action, pkgjwt.RoleSeller, quoteBody())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[dto.DocumentResponse](t, resp)
}

func TestHealth(t *testing.T) {
	app := newAPI(t)
	resp := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "documentos-api", body["service"])
}

func TestDocuments_SinTokenRetorna401(t *testing.T) {
	app := newAPI(t)
	resp := call(t, app, http.MethodGet, "/api/quotations", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDocuments_CrearYObtener(t *testing.T) {
	app := newAPI(t)
	created := createQuote(t, app, "validate")

	assert.Equal(t, "validated", created.Status)
	assert.Equal(t, "COT-2026-0001", created.SequentialNumber)
	assert.Equal(t, "214.20", created.Total.StringFixed(2))

	resp := call(t, app, http.MethodGet, "/api/quotations/"+created.ID, pkgjwt.RoleSeller, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decode[dto.DocumentResponse](t, resp)
	assert.Equal(t, created.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "iva19", got.Items[0].Taxes[0].TaxID)

	resp = call(t, app, http.MethodGet, "/api/invoices/"+created.ID, pkgjwt.RoleSeller, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "el id pertenece a otro tipo")
}

func TestDocuments_AccionDeAltaDesconocida(t *testing.T) {
	app := newAPI(t)
	resp := call(t, app, http.MethodPost, "/api/quotations?action=teleport", pkgjwt.RoleSeller, quoteBody())
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "ACTION_NOT_ALLOWED", body.Code)
}

func TestDocuments_EntradaInvalida(t *testing.T) {
	app := newAPI(t)
	body := quoteBody()
	body["items"] = []map[string]any{}
	resp := call(t, app, http.MethodPost, "/api/quotations", pkgjwt.RoleSeller, body)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/quotations", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleSeller))
	raw, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, raw.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, raw).Code)
}

func TestDocuments_ListadoConFiltroYMeta(t *testing.T) {
	app := newAPI(t)
	createQuote(t, app, "validate")
	createQuote(t, app, "validate")
	createQuote(t, app, "save")

	resp := call(t, app, http.MethodGet,
		"/api/quotations?filter=status||$eq||validated&sort=sequential_number,DESC&limit=1&join=items",
		pkgjwt.RoleSeller, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[dto.ListResponse[dto.DocumentResponse]](t, resp)

	require.Len(t, out.Data, 1)
	assert.Equal(t, "COT-2026-0002", out.Data[0].SequentialNumber)
	assert.NotEmpty(t, out.Data[0].Items)
	assert.Equal(t, 2, out.Meta.ItemCount)
	assert.Equal(t, 2, out.Meta.PageCount)
	assert.True(t, out.Meta.HasNextPage)

	resp = call(t, app, http.MethodGet, "/api/quotations?filter=status||like||x", pkgjwt.RoleSeller, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDocuments_EdicionConVersionObsoleta(t *testing.T) {
	app := newAPI(t)
	created := createQuote(t, app, "save")

	body := quoteBody()
	body["object"] = "Mantenimiento semestral"
	body["version"] = created.Version
	resp := call(t, app, http.MethodPut, "/api/quotations/"+created.ID, pkgjwt.RoleSeller, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decode[dto.DocumentResponse](t, resp)
	assert.Equal(t, "Mantenimiento semestral", updated.Object)
	assert.Equal(t, created.Version+1, updated.Version)

	resp = call(t, app, http.MethodPut, "/api/quotations/"+created.ID, pkgjwt.RoleSeller, body)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestDocuments_TransicionesYFacturacion(t *testing.T) {
	app := newAPI(t)
	quote := createQuote(t, app, "validate")

	for _, action := range []string{"send", "accept"} {
		resp := call(t, app, http.MethodPost, "/api/quotations/"+quote.ID+"/actions/"+action, pkgjwt.RoleSeller, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, action)
	}
	resp := call(t, app, http.MethodPost, "/api/quotations/"+quote.ID+"/actions/invoice", pkgjwt.RoleSeller, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[dto.TransitionResponse](t, resp)
	assert.Equal(t, "invoiced", out.Document.Status)
	require.NotNil(t, out.Created)
	assert.Equal(t, "FAC-2026-0001", out.Created.SequentialNumber)
	assert.Equal(t, quote.ID, out.Created.QuotationID)

	resp = call(t, app, http.MethodPost, "/api/quotations/"+quote.ID+"/actions/invoice", pkgjwt.RoleSeller, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDocuments_AccionesVisibles(t *testing.T) {
	app := newAPI(t)
	quote := createQuote(t, app, "save")

	resp := call(t, app, http.MethodGet, "/api/quotations/"+quote.ID+"/actions", pkgjwt.RoleSeller, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	views := decode[[]map[string]any](t, resp)
	visible := map[string]bool{}
	for _, v := range views {
		visible[v["key"].(string)] = v["visible"].(bool)
	}
	assert.True(t, visible["validate"])
	assert.False(t, visible["invoice"])
	assert.False(t, visible["archive"])
}

func TestDocuments_BorradoSegunRolYEstado(t *testing.T) {
	app := newAPI(t)
	draft := createQuote(t, app, "save")

	resp := call(t, app, http.MethodDelete, "/api/quotations/"+draft.ID, pkgjwt.RoleSeller, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "vendedor no borra")

	resp = call(t, app, http.MethodDelete, "/api/quotations/"+draft.ID, pkgjwt.RoleAccountant, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	sent := createQuote(t, app, "validate")
	call(t, app, http.MethodPost, "/api/quotations/"+sent.ID+"/actions/send", pkgjwt.RoleSeller, nil)
	resp = call(t, app, http.MethodDelete, "/api/quotations/"+sent.ID, pkgjwt.RoleAdmin, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDocuments_Duplicar(t *testing.T) {
	app := newAPI(t)
	quote := createQuote(t, app, "validate")

	resp := call(t, app, http.MethodPost, "/api/quotations/"+quote.ID+"/duplicate?includeItems=true", pkgjwt.RoleSeller, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	dup := decode[dto.DocumentResponse](t, resp)
	assert.Equal(t, "draft", dup.Status)
	assert.Equal(t, "COT-2026-0002", dup.SequentialNumber)
	assert.True(t, dup.Total.Equal(quote.Total))

	resp = call(t, app, http.MethodPost, "/api/quotations/"+quote.ID+"/duplicate", pkgjwt.RoleSeller, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	blank := decode[dto.DocumentResponse](t, resp)
	require.Len(t, blank.Items, 1)
	assert.True(t, blank.Total.IsZero())
}

func TestDocuments_PrevisualizarTotales(t *testing.T) {
	app := newAPI(t)
	body := map[string]any{
		"currency_id": "TND",
		"items":       []map[string]any{{"quantity": "3", "unit_price": "10.125", "tax_ids": []string{"timbre"}}},
	}
	resp := call(t, app, http.MethodPost, "/api/invoices/preview", pkgjwt.RoleSeller, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[map[string]any](t, resp)
	assert.NotNil(t, out["total"])
}

func TestDocuments_DescargaPDF(t *testing.T) {
	app := newAPI(t)
	quote := createQuote(t, app, "validate")

	resp := call(t, app, http.MethodGet, "/api/quotations/"+quote.ID+"/pdf", pkgjwt.RoleSeller, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "COT-2026-0001")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestSequences_ConsultarYAvanzar(t *testing.T) {
	app := newAPI(t)

	resp := call(t, app, http.MethodGet, "/api/sequences/invoices", pkgjwt.RoleSeller, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	seq := decode[dto.SequenceResponse](t, resp)
	assert.Equal(t, "FAC", seq.Prefix)
	assert.Equal(t, int64(1), seq.Next)

	update := dto.SequenceRequest{Prefix: "FV", DateFormat: "yyyy", Next: 40}
	resp = call(t, app, http.MethodPut, "/api/sequences/invoices", pkgjwt.RoleSeller, update)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/sequences/invoices", pkgjwt.RoleAccountant, update)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(40), decode[dto.SequenceResponse](t, resp).Next)

	update.Next = 5
	resp = call(t, app, http.MethodPut, "/api/sequences/invoices", pkgjwt.RoleAdmin, update)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "el contador no retrocede")

	resp = call(t, app, http.MethodGet, "/api/sequences/receipts", pkgjwt.RoleSeller, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestReferences_MonedasEImpuestos(t *testing.T) {
	app := newAPI(t)

	resp := call(t, app, http.MethodGet, "/api/currencies", pkgjwt.RoleSeller, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	currencies := decode[[]dto.CurrencyResponse](t, resp)
	precision := map[string]int32{}
	for _, c := range currencies {
		precision[c.Code] = c.Precision
	}
	assert.Equal(t, int32(2), precision["EUR"])
	assert.Equal(t, int32(3), precision["TND"])

	resp = call(t, app, http.MethodGet, "/api/taxes", pkgjwt.RoleSeller, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode[[]dto.TaxResponse](t, resp))
}

func TestFirms_AltaYListado(t *testing.T) {
	app := newAPI(t)
	firm := dto.CreateFirmRequest{Name: "Acme SAS", TaxID: "900123456-7"}

	resp := call(t, app, http.MethodPost, "/api/firms", pkgjwt.RoleSeller, firm)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[dto.FirmResponse](t, resp)
	assert.Equal(t, testCompanyID, created.CompanyID)

	resp = call(t, app, http.MethodPost, "/api/firms", pkgjwt.RoleSeller, firm)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/firms", pkgjwt.RoleSeller, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decode[[]dto.FirmResponse](t, resp)
	require.Len(t, list, 1)

	body := quoteBody()
	body["firm_id"] = created.ID
	resp = call(t, app, http.MethodPost, "/api/quotations", pkgjwt.RoleSeller, body)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body["firm_id"] = "no-existe"
	resp = call(t, app, http.MethodPost, "/api/quotations", pkgjwt.RoleSeller, body)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
