// Package http provides http transport for dates
package http

import (
	stdhttp "net/http"
	"strconv"

	"datemerge/internal/modkit/httpkit"
	perr "datemerge/internal/platform/errors"
	"datemerge/internal/services/api/dates/domain"
	svc "datemerge/internal/services/api/dates/service"
)

// Register mounts dates endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// recognition
	httpkit.PostJSON[domain.ParseInput](r, "/parse", h.parse)
	httpkit.PostJSON[domain.RecognizeInput](r, "/recognize", h.recognize)
	httpkit.PostJSON[domain.EvaluateInput](r, "/evaluate", h.evaluate)

	// merging
	httpkit.PostJSON[domain.MergeInput](r, "/merge", h.merge)
	httpkit.PostJSON[domain.BatchInput](r, "/merge/batch", h.mergeBatch)

	// audit
	httpkit.Get(r, "/log", h.log)
	httpkit.Get(r, "/branches", h.branches)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /dates/parse Dates datesParse
// @Summary Fragments of one dimension in a text
// @Tags Dates
// @Accept json
// @Produce json
// @Param payload body domain.ParseInput true "Text"
// @Success 200 {array} domain.FragmentDTO "ok"
// @Router /dates/parse [post]
func (h *handlers) parse(r *stdhttp.Request, in domain.ParseInput) (any, error) {
	return h.svc.Parse(r.Context(), in)
}

// swagger:route POST /dates/recognize Dates datesRecognize
// @Summary Descriptors of an utterance
// @Tags Dates
// @Accept json
// @Produce json
// @Param payload body domain.RecognizeInput true "Utterance"
// @Success 200 {array} domain.DescriptorDTO "ok"
// @Router /dates/recognize [post]
func (h *handlers) recognize(r *stdhttp.Request, in domain.RecognizeInput) (any, error) {
	return h.svc.Recognize(r.Context(), in)
}

// swagger:route POST /dates/evaluate Dates datesEvaluate
// @Summary Single value evaluation
// @Tags Dates
// @Accept json
// @Produce json
// @Param payload body domain.EvaluateInput true "Text"
// @Success 200 {object} domain.EvaluateOutput "ok"
// @Router /dates/evaluate [post]
func (h *handlers) evaluate(r *stdhttp.Request, in domain.EvaluateInput) (any, error) {
	return h.svc.Evaluate(r.Context(), in)
}

// swagger:route POST /dates/merge Dates datesMerge
// @Summary Merge a carried date with new descriptors
// @Tags Dates
// @Accept json
// @Produce json
// @Param payload body domain.MergeInput true "Carried and new values"
// @Success 200 {object} domain.MergeOutput "ok"
// @Router /dates/merge [post]
func (h *handlers) merge(r *stdhttp.Request, in domain.MergeInput) (any, error) {
	return h.svc.Merge(r.Context(), in)
}

// swagger:route POST /dates/merge/batch Dates datesMergeBatch
// @Summary Merge independent requests
// @Tags Dates
// @Accept json
// @Produce json
// @Param payload body domain.BatchInput true "Requests"
// @Success 200 {object} domain.BatchOutput "ok"
// @Router /dates/merge/batch [post]
func (h *handlers) mergeBatch(r *stdhttp.Request, in domain.BatchInput) (any, error) {
	return h.svc.MergeBatch(r.Context(), in)
}

// swagger:route GET /dates/log Dates datesLog
// @Summary Recent audited merges
// @Tags Dates
// @Produce json
// @Param limit query int false "Rows, 50 by default"
// @Success 200 {array} domain.LogRow "ok"
// @Router /dates/log [get]
func (h *handlers) log(r *stdhttp.Request) (any, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return nil, err
	}
	return h.svc.Log(r.Context(), limit)
}

// swagger:route GET /dates/branches Dates datesBranches
// @Summary Merges per day and branch
// @Tags Dates
// @Produce json
// @Param days query int false "Days back, 7 by default"
// @Success 200 {array} domain.BranchRow "ok"
// @Router /dates/branches [get]
func (h *handlers) branches(r *stdhttp.Request) (any, error) {
	days, err := queryInt(r, "days")
	if err != nil {
		return nil, err
	}
	return h.svc.Branches(r.Context(), days)
}

// queryInt reads an optional integer query parameter, 0 when absent
func queryInt(r *stdhttp.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, perr.WithField(perr.InvalidArgf("%s must be a non negative integer", key), key)
	}
	return n, nil
}
