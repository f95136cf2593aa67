package feed

import (
	"time"

	"github.com/callvox/painel/backend/internal/metrics"
	"github.com/callvox/painel/backend/internal/pipeline"
	"github.com/callvox/painel/backend/internal/types"
	"github.com/rs/zerolog"
)

// Handler translates raw manager-interface event frames into pipeline
// feed transitions. Each queue member maps to one keyed status bucket
// (queue + "/" + interface); several buckets reduce into the same queue
// downstream.
type Handler struct {
	pipe   *pipeline.Pipeline
	logger zerolog.Logger
	now    func() time.Time
}

// NewHandler creates a feed handler bound to a pipeline.
func NewHandler(pipe *pipeline.Pipeline, logger zerolog.Logger) *Handler {
	return &Handler{
		pipe:   pipe,
		logger: logger.With().Str("component", "feed").Logger(),
		now:    time.Now,
	}
}

// HandleEvent ingests one event frame. Unknown event types are ignored;
// malformed frames are skipped without surfacing an error, since this is
// best-effort display aggregation.
func (h *Handler) HandleEvent(ev map[string]string) {
	m := metrics.Get()

	switch ev["Event"] {
	case "QueueMember", "QueueMemberAdded", "QueueMemberStatus":
		h.applyMember(ev)
		m.RecordFeedEvent()

	case "QueueMemberPause":
		h.applyPause(ev)
		m.RecordFeedEvent()

	case "QueueMemberRemoved":
		queue, iface := ev["Queue"], memberInterface(ev)
		if queue == "" || iface == "" {
			return
		}
		h.pipe.RemoveStatusBucket(bucketKey(queue, iface))
		m.RecordFeedEvent()

	case "QueueParams":
		queue := ev["Queue"]
		if queue == "" {
			return
		}
		h.pipe.ApplyTotals(queue, pipeline.ParseTotals(queue, map[string]string{
			"tma":         ev["TalkTime"],
			"tme":         ev["Holdtime"],
			"atendidas":   ev["Completed"],
			"abandonadas": ev["Abandoned"],
			"aguardando":  ev["Calls"],
		}))
		m.RecordFeedEvent()
	}
}

func (h *Handler) applyMember(ev map[string]string) {
	queue, iface := ev["Queue"], memberInterface(ev)
	if queue == "" || iface == "" {
		h.logger.Debug().Str("event", ev["Event"]).Msg("member frame without queue or interface")
		return
	}

	status := ev["Status"]
	if status == "" {
		status = types.StatusAvailable
	}

	h.pipe.ApplyStatusBucket(bucketKey(queue, iface), types.StatusBucket{
		Queue:  queue,
		Status: status,
		Members: []types.RawMemberEntry{{
			MemberName: memberName(ev),
			Interface:  iface,
			Paused:     ev["Paused"],
			Queue:      queue,
			EventTime:  h.now().UTC().Format(time.RFC3339),
		}},
	})
}

// applyPause handles pause-flag flips. The frame may omit the raw status,
// in which case the member keeps the status of its current bucket.
func (h *Handler) applyPause(ev map[string]string) {
	queue, iface := ev["Queue"], memberInterface(ev)
	if queue == "" || iface == "" {
		return
	}

	status := ev["Status"]
	if status == "" {
		if prev, ok := h.pipe.StatusBucket(bucketKey(queue, iface)); ok {
			status = prev.Status
		} else {
			status = types.StatusAvailable
		}
	}

	h.pipe.ApplyStatusBucket(bucketKey(queue, iface), types.StatusBucket{
		Queue:  queue,
		Status: status,
		Members: []types.RawMemberEntry{{
			MemberName: memberName(ev),
			Interface:  iface,
			Paused:     ev["Paused"],
			Queue:      queue,
			EventTime:  h.now().UTC().Format(time.RFC3339),
		}},
	})
}

func bucketKey(queue, iface string) string {
	return queue + "/" + iface
}

func memberInterface(ev map[string]string) string {
	if v := ev["Interface"]; v != "" {
		return v
	}
	return ev["Location"]
}

func memberName(ev map[string]string) string {
	if v := ev["MemberName"]; v != "" {
		return v
	}
	return ev["Name"]
}
