package queue

import (
	"encoding/hex"
	"net/http"
	"sort"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/mux"
	"github.com/scitt-community/merklelog-engine/ids"
	"github.com/scitt-community/merklelog-engine/telemetry"
)

// ProblemDetails is an RFC 9457 Problem Details body, encoded as CBOR.
type ProblemDetails struct {
	Type   string `cbor:"type"`
	Title  string `cbor:"title"`
	Status int    `cbor:"status"`
	Detail string `cbor:"detail,omitempty"`
}

const cborContentType = "application/cbor"

// Handler wires the queue HTTP surface described for /queue/* onto a mux.Router.
type Handler struct {
	mgr *Manager
	log telemetry.Logger
}

// NewHandler constructs a Handler bound to mgr.
func NewHandler(mgr *Manager, log telemetry.Logger) *Handler {
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	return &Handler{mgr: mgr, log: log}
}

// Register attaches every /queue/* route to r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/queue/pull", h.handlePull).Methods(http.MethodPost)
	r.HandleFunc("/queue/ack", h.handleAck).Methods(http.MethodPost)
	r.HandleFunc("/queue/stats", h.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/queue/shards", h.handleShards).Methods(http.MethodGet)
	r.HandleFunc("/queue/debug/recent", h.handleRecent).Methods(http.MethodGet)
}

func (h *Handler) shardFromQuery(w http.ResponseWriter, r *http.Request) (*Shard, int, bool) {
	raw := r.URL.Query().Get("shard")
	idx, err := strconv.Atoi(raw)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid shard query parameter")
		return nil, 0, false
	}
	s, err := h.mgr.Shard(idx)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "shard out of range")
		return nil, 0, false
	}
	return s, idx, true
}

type pullRequest struct {
	PollerId     string `cbor:"pollerId"`
	BatchSize    uint32 `cbor:"batchSize"`
	VisibilityMs uint32 `cbor:"visibilityMs"`
}

type pullResponseWire struct {
	Version     int             `cbor:"version"`
	LeaseExpiry int64           `cbor:"leaseExpiry"`
	LogGroups   []logGroupWire  `cbor:"logGroups"`
}

type logGroupWire struct {
	LogId   []byte             `cbor:"logId"`
	SeqLo   uint64             `cbor:"seqLo"`
	SeqHi   uint64             `cbor:"seqHi"`
	Entries []pendingEntryWire `cbor:"entries"`
}

type pendingEntryWire struct {
	Seq          uint64 `cbor:"seq"`
	ContentHash  []byte `cbor:"contentHash"`
	Extras       []byte `cbor:"extras,omitempty"`
	EnqueuedAtMs int64  `cbor:"enqueuedAt"`
}

func (h *Handler) handlePull(w http.ResponseWriter, r *http.Request) {
	if !requireCBOR(w, r) {
		return
	}
	shard, _, ok := h.shardFromQuery(w, r)
	if !ok {
		return
	}

	var req pullRequest
	if err := cbor.NewDecoder(r.Body).Decode(&req); err != nil || req.PollerId == "" {
		writeProblem(w, http.StatusBadRequest, "malformed pull request body")
		return
	}

	resp, err := shard.Pull(req.PollerId, int(req.BatchSize), int64(req.VisibilityMs))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, err.Error())
		return
	}

	wire := pullResponseWire{Version: resp.Version, LeaseExpiry: resp.LeaseExpiry}
	for _, g := range resp.LogGroups {
		gw := logGroupWire{LogId: g.LogId.Bytes(), SeqLo: g.SeqLo, SeqHi: g.SeqHi}
		for _, e := range g.Entries {
			gw.Entries = append(gw.Entries, pendingEntryWire{
				Seq:          e.Seq,
				ContentHash:  e.ContentHash[:],
				Extras:       e.Extras,
				EnqueuedAtMs: e.EnqueuedAtMs,
			})
		}
		wire.LogGroups = append(wire.LogGroups, gw)
	}
	writeCBOR(w, http.StatusOK, wire)
}

type ackRequest struct {
	LogId          []byte `cbor:"logId"`
	SeqLo          uint64 `cbor:"seqLo"`
	Limit          uint32 `cbor:"limit"`
	FirstLeafIndex uint64 `cbor:"firstLeafIndex"`
	MassifHeight   uint8  `cbor:"massifHeight"`
	PollerId       string `cbor:"pollerId"`
}

type ackResponse struct {
	Acked uint32 `cbor:"acked"`
}

func (h *Handler) handleAck(w http.ResponseWriter, r *http.Request) {
	if !requireCBOR(w, r) {
		return
	}
	shard, _, ok := h.shardFromQuery(w, r)
	if !ok {
		return
	}

	var req ackRequest
	if err := cbor.NewDecoder(r.Body).Decode(&req); err != nil || len(req.LogId) != 16 {
		writeProblem(w, http.StatusBadRequest, "malformed ack request body")
		return
	}
	var logId ids.LogId
	copy(logId[:], req.LogId)

	acked, err := shard.Ack(req.PollerId, logId, req.SeqLo, int(req.Limit), req.FirstLeafIndex, req.MassifHeight)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, err.Error())
		return
	}
	writeCBOR(w, http.StatusOK, ackResponse{Acked: uint32(acked)})
}

type statsWire struct {
	Pending            int     `json:"pending"`
	DeadLetters        int     `json:"deadLetters"`
	OldestEntryAgeMs   int64   `json:"oldestEntryAgeMs,omitempty"`
	ActivePollers      int     `json:"activePollers"`
	PullerLimitReached bool    `json:"pullerLimitReached"`
	AvgAckLatencyMs    float64 `json:"avgAckLatencyMs"`
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	agg := statsWire{}
	var latencySum float64
	var latencyShards int
	for _, s := range h.mgr.All() {
		st := s.Stats()
		agg.Pending += st.Pending
		agg.DeadLetters += st.DeadLetters
		agg.ActivePollers += st.ActivePollers
		agg.PullerLimitReached = agg.PullerLimitReached || st.PullerLimitReached
		if st.HasOldestEntry && (agg.OldestEntryAgeMs == 0 || st.OldestEntryAgeMs > agg.OldestEntryAgeMs) {
			agg.OldestEntryAgeMs = st.OldestEntryAgeMs
		}
		if st.AvgAckLatencyMs > 0 {
			latencySum += st.AvgAckLatencyMs
			latencyShards++
		}
	}
	if latencyShards > 0 {
		agg.AvgAckLatencyMs = latencySum / float64(latencyShards)
	}
	writeJSON(w, http.StatusOK, agg)
}

type shardsResponse struct {
	Count           int               `json:"count"`
	PullURLTemplate string            `json:"pullUrlTemplate"`
	AckURLTemplate  string            `json:"ackUrlTemplate"`
	Shards          []shardSummary    `json:"shards"`
}

type shardSummary struct {
	Index        int `json:"index"`
	PendingCount int `json:"pendingCount"`
}

func (h *Handler) handleShards(w http.ResponseWriter, r *http.Request) {
	resp := shardsResponse{
		Count:           h.mgr.Count(),
		PullURLTemplate: "/queue/pull?shard={i}",
		AckURLTemplate:  "/queue/ack?shard={i}",
	}
	for i, s := range h.mgr.All() {
		resp.Shards = append(resp.Shards, shardSummary{Index: i, PendingCount: s.Stats().Pending})
	}
	writeJSON(w, http.StatusOK, resp)
}

type recentEntryWire struct {
	Seq                 uint64 `json:"seq"`
	LogId               string `json:"logId"`
	ContentHash         string `json:"contentHash"`
	EnqueuedAtMs        int64  `json:"enqueuedAt"`
	AckedAtMs           int64  `json:"ackedAt,omitempty"`
	SequencingLatencyMs int64  `json:"sequencingLatencyMs,omitempty"`
}

type latencySummary struct {
	Count int     `json:"count"`
	MinMs int64   `json:"minMs"`
	MaxMs int64   `json:"maxMs"`
	AvgMs float64 `json:"avgMs"`
	P50Ms int64   `json:"p50Ms"`
	P95Ms int64   `json:"p95Ms"`
	P99Ms int64   `json:"p99Ms"`
}

type recentResponse struct {
	Entries        []recentEntryWire `json:"entries"`
	LatencySummary latencySummary    `json:"latencySummary"`
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	var shards []*Shard
	if raw := r.URL.Query().Get("shard"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "invalid shard query parameter")
			return
		}
		s, err := h.mgr.Shard(idx)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "shard out of range")
			return
		}
		shards = []*Shard{s}
	} else {
		shards = h.mgr.All()
	}

	var all []RecentEntry
	for _, s := range shards {
		all = append(all, s.RecentEntries(limit)...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Seq < all[j].Seq })
	if len(all) > limit {
		all = all[len(all)-limit:]
	}

	resp := recentResponse{}
	var latencies []int64
	for _, e := range all {
		w := recentEntryWire{
			Seq:          e.Seq,
			LogId:        hex.EncodeToString(e.LogId.Bytes()),
			ContentHash:  e.ContentHash.String(),
			EnqueuedAtMs: e.EnqueuedAtMs,
		}
		if e.AckedAtMs > 0 {
			w.AckedAtMs = e.AckedAtMs
			w.SequencingLatencyMs = e.AckedAtMs - e.EnqueuedAtMs
			latencies = append(latencies, w.SequencingLatencyMs)
		}
		resp.Entries = append(resp.Entries, w)
	}
	resp.LatencySummary = summarizeLatencies(latencies)
	writeJSON(w, http.StatusOK, resp)
}

func summarizeLatencies(v []int64) latencySummary {
	if len(v) == 0 {
		return latencySummary{}
	}
	sorted := make([]int64, len(v))
	copy(sorted, v)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum int64
	for _, x := range sorted {
		sum += x
	}
	return latencySummary{
		Count: len(sorted),
		MinMs: sorted[0],
		MaxMs: sorted[len(sorted)-1],
		AvgMs: float64(sum) / float64(len(sorted)),
		P50Ms: percentile(sorted, 0.50),
		P95Ms: percentile(sorted, 0.95),
		P99Ms: percentile(sorted, 0.99),
	}
}

// percentile uses a ceil-index rule on the ascending-sorted sample.
func percentile(sorted []int64, p float64) int64 {
	n := len(sorted)
	idx := int(ceilf(p*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

func ceilf(x float64) float64 {
	i := int64(x)
	if float64(i) < x {
		i++
	}
	return float64(i)
}
