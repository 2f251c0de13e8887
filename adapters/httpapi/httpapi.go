// Package httpapi is the thin HTTP layer over the conversion engine.
// It is only responsible for request decoding, engine orchestration, and
// response encoding - it performs no detection or conversion logic itself,
// all of which lives in core/detect and core/convert.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"measureconvert/core/convert"
	"measureconvert/core/currency"
	"measureconvert/core/detect"
	"measureconvert/core/ratecache"
	"measureconvert/core/types"
	"measureconvert/internal/errors"
	"measureconvert/internal/logging"
)

// Server serves the conversion API.
type Server struct {
	detector  *detect.Detector
	converter *convert.Converter
	rateCache *ratecache.Service
	version   string
	mux       *http.ServeMux
}

// NewServer wires the engine into a ready-to-serve mux.
func NewServer(detector *detect.Detector, converter *convert.Converter, rateCache *ratecache.Service, version string) *Server {
	s := &Server{
		detector:  detector,
		converter: converter,
		rateCache: rateCache,
		version:   version,
		mux:       http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /v1/convert", s.handleConvert)
	s.mux.HandleFunc("GET /v1/rate", s.handleRate)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

type convertRequest struct {
	Text     string `json:"text"`
	Currency string `json:"currency,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Is12hr   *bool  `json:"is12hr,omitempty"`
}

type convertResponse struct {
	OriginalText string `json:"original_text"`
	Converted    string `json:"converted"`
	Kind         string `json:"kind"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDomainError(w, errors.Wrap(errors.TypeInput, "invalid request body", err), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeDomainError(w, errors.Input("text is required"), http.StatusBadRequest)
		return
	}

	settings := types.DefaultSettings()
	if req.Currency != "" {
		settings.CurrencyUnit = strings.ToUpper(req.Currency)
	}
	if req.Timezone != "" {
		settings.TimezoneUnit = req.Timezone
	}
	if req.Is12hr != nil {
		settings.Is12hr = *req.Is12hr
	}

	s.rateCache.UpdateActivity(ctx)

	conv := s.detector.FindConversion(req.Text, settings)
	if conv == nil {
		s.writeJSON(w, convertResponse{OriginalText: req.Text, Kind: "none"}, http.StatusOK)
		return
	}

	resp, err := s.render(ctx, conv, settings)
	if err != nil {
		s.writeDomainError(w, asDomainError(err, errors.TypeInternal), http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, resp, http.StatusOK)
}

// asDomainError passes an already-typed *errors.Error through unchanged
// (preserving its Type and Context), or wraps a plain error under
// fallbackType for callers that need a *errors.Error to inspect.
func asDomainError(err error, fallbackType errors.Type) *errors.Error {
	if de, ok := err.(*errors.Error); ok {
		return de
	}
	return errors.Wrap(fallbackType, err.Error(), err)
}

func (s *Server) render(ctx context.Context, conv *types.Conversion, settings types.UserSettings) (convertResponse, error) {
	resp := convertResponse{OriginalText: conv.OriginalText}
	switch {
	case conv.Scalar != nil:
		resp.Kind = "scalar"
		resp.Converted = s.converter.FormatResult(conv.Scalar.ConvertedValue, conv.Scalar.ConvertedUnit)
	case conv.Dimensions3D != nil:
		resp.Kind = "dimensions3d"
		resp.Converted = s.converter.FormatDimensions3D(*conv.Dimensions3D)
	case conv.TimeZone != nil:
		resp.Kind = "timezone"
		resp.Converted = convert.FormatTimeZone(conv.TimeZone, settings.Is12hr)
	case conv.CurrencyPending != nil:
		resp.Kind = "currency"
		to := conv.CurrencyPending.ToCode
		if settings.CurrencyUnit != "" {
			to = settings.CurrencyUnit
		}
		result, err := s.rateCache.GetCurrencyRate(ctx, conv.CurrencyPending.FromCode, to)
		if err != nil {
			return resp, err
		}
		amount := conv.CurrencyPending.Amount * result.Rate
		resp.Converted = currency.FormatCurrency(amount, to, "en-US")
	default:
		resp.Kind = "none"
	}
	return resp, nil
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from := strings.ToUpper(r.URL.Query().Get("from"))
	to := strings.ToUpper(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		s.writeDomainError(w, errors.Input("from and to query params are required"), http.StatusBadRequest)
		return
	}
	s.rateCache.UpdateActivity(ctx)
	result, err := s.rateCache.GetCurrencyRate(ctx, from, to)
	if err != nil {
		s.writeDomainError(w, asDomainError(err, errors.TypeNetwork), http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"from":          from,
		"to":            to,
		"rate":          result.Rate,
		"used_fallback": result.UsedFallback,
		"from_cache":    result.FromCache,
		"stale":         result.Stale,
	}, http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version": s.version,
		"engine":  "measureconvert",
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Warn("write response failed", zap.Error(err))
	}
}

// writeDomainError renders a domain error as the API's error envelope, using
// the error's Type as the machine-readable code so callers can branch on it
// without parsing the message.
func (s *Server) writeDomainError(w http.ResponseWriter, err *errors.Error, status int) {
	body := map[string]interface{}{
		"code":    string(err.Type),
		"message": err.Message,
	}
	if err.Context != nil {
		body["context"] = err.Context
	}
	s.writeJSON(w, map[string]interface{}{"error": body}, status)
}
