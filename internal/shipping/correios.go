// Package shipping provides the carrier rate client used by the shipping
// estimator. The only implementation speaks the Correios CalcPrecoPrazo
// legacy XML API.
package shipping

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrCarrierUnreachable indicates a transport-level failure talking to the
// carrier (connection refused, timeout, 5xx).
var ErrCarrierUnreachable = errors.New("correios: carrier unreachable")

// Package is the aggregate parcel submitted for a quote.
type Package struct {
	WeightKg float64
	LengthCm float64
	WidthCm  float64
	HeightCm float64
}

// ServiceQuote is one carrier service entry from the rate response. Entries
// with a non-zero ErrorCode carry no usable price. Price is the carrier value
// normalized to a point decimal separator ("23,50" becomes "23.50").
type ServiceQuote struct {
	ServiceCode  string
	Price        string
	DeliveryDays int
	ErrorCode    string
	ErrorMessage string
}

// RateClient fetches carrier quotes for a parcel between two CEPs.
type RateClient interface {
	Rates(ctx context.Context, originCEP, destinationCEP string, pkg Package, serviceCodes []string) ([]ServiceQuote, error)
}

// CorreiosClient implements RateClient against the CalcPrecoPrazo endpoint.
type CorreiosClient struct {
	endpoint   string
	httpClient *http.Client
}

// CorreiosOption customises CorreiosClient construction.
type CorreiosOption func(*CorreiosClient)

// WithHTTPClient overrides the HTTP client (primarily for tests).
func WithHTTPClient(client *http.Client) CorreiosOption {
	return func(c *CorreiosClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds each rate request.
func WithTimeout(d time.Duration) CorreiosOption {
	return func(c *CorreiosClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewCorreiosClient constructs a client for the given endpoint.
func NewCorreiosClient(endpoint string, opts ...CorreiosOption) (*CorreiosClient, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("correios: endpoint is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("correios: invalid endpoint: %w", err)
	}

	client := &CorreiosClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Rates queries all requested service codes in a single call and returns one
// quote per service the carrier answered for.
func (c *CorreiosClient) Rates(ctx context.Context, originCEP, destinationCEP string, pkg Package, serviceCodes []string) ([]ServiceQuote, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("correios: client not initialised")
	}
	if len(serviceCodes) == 0 {
		return nil, errors.New("correios: at least one service code is required")
	}

	query := url.Values{}
	query.Set("nCdEmpresa", "")
	query.Set("sDsSenha", "")
	query.Set("nCdServico", strings.Join(serviceCodes, ","))
	query.Set("sCepOrigem", originCEP)
	query.Set("sCepDestino", destinationCEP)
	query.Set("nVlPeso", formatDecimal(pkg.WeightKg))
	query.Set("nCdFormato", "1")
	query.Set("nVlComprimento", formatDecimal(pkg.LengthCm))
	query.Set("nVlAltura", formatDecimal(pkg.HeightCm))
	query.Set("nVlLargura", formatDecimal(pkg.WidthCm))
	query.Set("nVlDiametro", "0")
	query.Set("sCdMaoPropria", "N")
	query.Set("nVlValorDeclarado", "0")
	query.Set("sCdAvisoRecebimento", "N")
	query.Set("StrRetorno", "xml")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("correios: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) || isConnectionError(err) {
			return nil, fmt.Errorf("%w: %v", ErrCarrierUnreachable, err)
		}
		return nil, fmt.Errorf("correios: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrCarrierUnreachable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("correios: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrCarrierUnreachable, err)
	}

	return parseRateResponse(body)
}

type rateResponse struct {
	XMLName  xml.Name      `xml:"Servicos"`
	Services []rateService `xml:"cServico"`
}

type rateService struct {
	Code         string `xml:"Codigo"`
	Value        string `xml:"Valor"`
	DeliveryDays string `xml:"PrazoEntrega"`
	ErrorCode    string `xml:"Erro"`
	ErrorMessage string `xml:"MsgErro"`
}

func parseRateResponse(body []byte) ([]ServiceQuote, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(body)))
	// The legacy endpoint declares ISO-8859-1; the fields we read are ASCII.
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var parsed rateResponse
	if err := decoder.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("correios: decode response: %w", err)
	}

	quotes := make([]ServiceQuote, 0, len(parsed.Services))
	for _, svc := range parsed.Services {
		quote := ServiceQuote{
			ServiceCode:  normalizeServiceCode(svc.Code),
			ErrorCode:    strings.TrimSpace(svc.ErrorCode),
			ErrorMessage: strings.TrimSpace(svc.ErrorMessage),
		}
		if quote.ErrorCode == "0" {
			price, err := NormalizePrice(svc.Value)
			if err != nil {
				return nil, fmt.Errorf("correios: service %s: %w", quote.ServiceCode, err)
			}
			quote.Price = price
			if days := strings.TrimSpace(svc.DeliveryDays); days != "" {
				parsedDays, err := strconv.Atoi(days)
				if err != nil {
					return nil, fmt.Errorf("correios: service %s: invalid delivery days %q", quote.ServiceCode, days)
				}
				quote.DeliveryDays = parsedDays
			}
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// NormalizePrice converts the carrier's Brazilian decimal format ("1.234,56")
// into a point-separated decimal string ("1234.56"). The cent digits are kept
// exactly as the carrier sent them.
func NormalizePrice(value string) (string, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return "", errors.New("empty price")
	}
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
		return "", fmt.Errorf("invalid price %q", value)
	}
	return cleaned, nil
}

// normalizeServiceCode zero-pads codes the carrier returns without leading
// zeros (4014 vs 04014).
func normalizeServiceCode(code string) string {
	code = strings.TrimSpace(code)
	for len(code) > 0 && len(code) < 5 {
		code = "0" + code
	}
	return code
}

func formatDecimal(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout() || errors.Is(err, context.DeadlineExceeded)
}

func isConnectionError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// Ensure interface compliance.
var _ RateClient = (*CorreiosClient)(nil)
