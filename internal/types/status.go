package types

// StatusCategory groups raw member status codes into the four dashboard buckets.
type StatusCategory string

const (
	CategoryAvailable   StatusCategory = "available"
	CategoryBusy        StatusCategory = "busy"
	CategoryPaused      StatusCategory = "paused"
	CategoryUnavailable StatusCategory = "unavailable"
	CategoryNone        StatusCategory = ""
)

// Raw member status codes as delivered by the queue-status feed.
// StatusPaused is synthetic: the feed reports paused members as available
// with a separate paused flag, and the reducer reclassifies them.
const (
	StatusAvailable    = "1"
	StatusInUse        = "2"
	StatusBusy         = "3"
	StatusUnavailable  = "5"
	StatusRinging      = "6"
	StatusInUseRinging = "7"
	StatusWaiting      = "8"
	StatusPaused       = "999"
)

// StatusInfo describes how a status code is rendered on the dashboard.
type StatusInfo struct {
	Code     string         `json:"code"`
	Label    string         `json:"label"`
	Color    string         `json:"color"`
	Category StatusCategory `json:"category"`
}

// StatusCatalog maps every recognized status code to its display info.
var StatusCatalog = map[string]StatusInfo{
	StatusAvailable:    {Code: StatusAvailable, Label: "Disponível", Color: "#22c55e", Category: CategoryAvailable},
	StatusInUse:        {Code: StatusInUse, Label: "Em atendimento", Color: "#3b82f6", Category: CategoryBusy},
	StatusBusy:         {Code: StatusBusy, Label: "Ocupado", Color: "#f97316", Category: CategoryBusy},
	StatusUnavailable:  {Code: StatusUnavailable, Label: "Indisponível", Color: "#6b7280", Category: CategoryUnavailable},
	StatusRinging:      {Code: StatusRinging, Label: "Tocando", Color: "#eab308", Category: CategoryBusy},
	StatusInUseRinging: {Code: StatusInUseRinging, Label: "Em atendimento", Color: "#3b82f6", Category: CategoryBusy},
	StatusWaiting:      {Code: StatusWaiting, Label: "Aguardando", Color: "#a855f7", Category: CategoryBusy},
	StatusPaused:       {Code: StatusPaused, Label: "Em pausa", Color: "#ef4444", Category: CategoryPaused},
}

// StatusOrder fixes the emission order of status groups inside a queue so
// recomputed snapshots are deterministic.
var StatusOrder = []string{
	StatusAvailable,
	StatusInUse,
	StatusBusy,
	StatusRinging,
	StatusInUseRinging,
	StatusWaiting,
	StatusPaused,
	StatusUnavailable,
}

// LookupStatus returns the display info for a status code. Unrecognized
// codes return ok=false and are not counted in any dashboard bucket.
func LookupStatus(code string) (StatusInfo, bool) {
	info, ok := StatusCatalog[code]
	return info, ok
}
