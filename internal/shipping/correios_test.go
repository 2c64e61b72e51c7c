package shipping

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleResponse = `<?xml version="1.0" encoding="ISO-8859-1"?>
<Servicos>
  <cServico>
    <Codigo>4014</Codigo>
    <Valor>23,50</Valor>
    <PrazoEntrega>5</PrazoEntrega>
    <Erro>0</Erro>
    <MsgErro></MsgErro>
  </cServico>
  <cServico>
    <Codigo>4510</Codigo>
    <Valor>0,00</Valor>
    <PrazoEntrega>0</PrazoEntrega>
    <Erro>-888</Erro>
    <MsgErro>CEP de destino invalido</MsgErro>
  </cServico>
</Servicos>`

func TestRatesParsesServices(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"nCdServico":  r.URL.Query().Get("nCdServico"),
			"sCepOrigem":  r.URL.Query().Get("sCepOrigem"),
			"sCepDestino": r.URL.Query().Get("sCepDestino"),
			"nVlPeso":     r.URL.Query().Get("nVlPeso"),
			"StrRetorno":  r.URL.Query().Get("StrRetorno"),
		}
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client, err := NewCorreiosClient(server.URL)
	if err != nil {
		t.Fatalf("NewCorreiosClient: %v", err)
	}

	quotes, err := client.Rates(context.Background(), "01310100", "20040020",
		Package{WeightKg: 0.5, LengthCm: 20, WidthCm: 15, HeightCm: 10},
		[]string{"04014", "04510"})
	if err != nil {
		t.Fatalf("Rates: %v", err)
	}

	if gotQuery["nCdServico"] != "04014,04510" {
		t.Errorf("nCdServico = %q", gotQuery["nCdServico"])
	}
	if gotQuery["sCepOrigem"] != "01310100" || gotQuery["sCepDestino"] != "20040020" {
		t.Errorf("CEPs = %q -> %q", gotQuery["sCepOrigem"], gotQuery["sCepDestino"])
	}
	if gotQuery["nVlPeso"] != "0.5" {
		t.Errorf("nVlPeso = %q", gotQuery["nVlPeso"])
	}
	if gotQuery["StrRetorno"] != "xml" {
		t.Errorf("StrRetorno = %q", gotQuery["StrRetorno"])
	}

	if len(quotes) != 2 {
		t.Fatalf("len(quotes) = %d, want 2", len(quotes))
	}
	sedex := quotes[0]
	if sedex.ServiceCode != "04014" {
		t.Errorf("ServiceCode = %q, want zero-padded 04014", sedex.ServiceCode)
	}
	if sedex.Price != "23.50" {
		t.Errorf("Price = %q, want comma separator normalized to point", sedex.Price)
	}
	if sedex.DeliveryDays != 5 {
		t.Errorf("DeliveryDays = %d, want 5", sedex.DeliveryDays)
	}
	if sedex.ErrorCode != "0" {
		t.Errorf("ErrorCode = %q, want 0", sedex.ErrorCode)
	}

	pac := quotes[1]
	if pac.ErrorCode != "-888" || pac.ErrorMessage == "" {
		t.Errorf("failed service = %+v, want error code and message", pac)
	}
	if pac.Price != "" {
		t.Errorf("failed service carries price %q", pac.Price)
	}
}

func TestRatesServerErrorIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewCorreiosClient(server.URL)
	if err != nil {
		t.Fatalf("NewCorreiosClient: %v", err)
	}

	_, err = client.Rates(context.Background(), "01310100", "20040020", Package{WeightKg: 0.3}, []string{"04014"})
	if err == nil {
		t.Fatal("Rates succeeded, want error")
	}
	if !errors.Is(err, ErrCarrierUnreachable) {
		t.Errorf("error = %v, want ErrCarrierUnreachable", err)
	}
}

func TestRatesConnectionRefusedIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client, err := NewCorreiosClient(serverURL)
	if err != nil {
		t.Fatalf("NewCorreiosClient: %v", err)
	}

	_, err = client.Rates(context.Background(), "01310100", "20040020", Package{WeightKg: 0.3}, []string{"04014"})
	if err == nil {
		t.Fatal("Rates succeeded, want error")
	}
	if !errors.Is(err, ErrCarrierUnreachable) {
		t.Errorf("error = %v, want ErrCarrierUnreachable", err)
	}
}

func TestRatesMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<Servicos><cServico>"))
	}))
	defer server.Close()

	client, err := NewCorreiosClient(server.URL)
	if err != nil {
		t.Fatalf("NewCorreiosClient: %v", err)
	}

	_, err = client.Rates(context.Background(), "01310100", "20040020", Package{WeightKg: 0.3}, []string{"04014"})
	if err == nil {
		t.Fatal("Rates succeeded, want decode error")
	}
	if errors.Is(err, ErrCarrierUnreachable) {
		t.Errorf("decode failure classified as unreachable: %v", err)
	}
}

func TestNormalizePrice(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"23,50", "23.50", false},
		{"1.234,56", "1234.56", false},
		{"0,00", "0.00", false},
		{" 99,90 ", "99.90", false},
		{"", "", true},
		{"abc", "", true},
	}
	for _, tc := range cases {
		got, err := NormalizePrice(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NormalizePrice(%q) succeeded, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizePrice(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizePrice(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
