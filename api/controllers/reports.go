package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Alioune4002/boutique-caisse/api/responses"
	reportingsvc "github.com/Alioune4002/boutique-caisse/internal/reporting"
	pkgerrors "github.com/Alioune4002/boutique-caisse/pkg/errors"
	"github.com/Alioune4002/boutique-caisse/pkg/logger"
)

// ReportSummary returns the aggregated revenue report. Optional `from`
// and `to` query parameters (YYYY-MM-DD) bound the range.
func ReportSummary(svc reportingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := parseRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// ReportExport streams the report as an xlsx attachment.
func ReportExport(svc reportingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := parseRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload, err := svc.ExportXLSX(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("rapport-caisse-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, pkgerrors.Wrap(pkgerrors.CodeMalformedInput, err, "invalid from date")
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, pkgerrors.Wrap(pkgerrors.CodeMalformedInput, err, "invalid to date")
		}
		// inclusive end of day
		to = parsed.Add(24 * time.Hour)
	}
	return from, to, nil
}
