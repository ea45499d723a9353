package dto

type MapResponse struct {
	MapID             string    `json:"map_id"`
	WarehouseID       *int64    `json:"warehouse_id"`
	IntersectionCount int       `json:"intersection_count"`
	SegmentCount      int       `json:"segment_count"`
	BoundsMin         []float64 `json:"bounds_min"`
	BoundsMax         []float64 `json:"bounds_max"`
}
