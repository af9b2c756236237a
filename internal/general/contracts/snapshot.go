package contracts

// VehicleLine is one row of the per-vehicle report table.
type VehicleLine struct {
	VehicleID     int     `json:"vehicle_id"`
	Class         int     `json:"class"`
	BookingIDs    []int   `json:"booking_ids"`
	ActiveKM      float64 `json:"active_km"`
	DeadKM        float64 `json:"dead_km"`
	DriverPay     float64 `json:"driver_pay"`
	Efficiency    float64 `json:"efficiency"`
	AvailableFrom int     `json:"available_from"`
}

// BookingLine is one row of the per-booking report table.
type BookingLine struct {
	BookingID  int    `json:"booking_id"`
	Locked     bool   `json:"locked"`
	Origin     string `json:"origin"`
	VehicleID  *int   `json:"vehicle_id,omitempty"`
	Unassigned bool   `json:"unassigned"`
}

// Snapshot is the full per-tick and final report payload: the exact shape
// pushed to RabbitMQ, broadcast over WebSocket, and written to the
// console/tee-file report.
type Snapshot struct {
	TickIndex      int           `json:"tick_index"`
	TickStart      string        `json:"tick_start"`
	TickEnd        string        `json:"tick_end"`
	Final          bool          `json:"final"`
	Vehicles       []VehicleLine `json:"vehicles"`
	Bookings       []BookingLine `json:"bookings"`
	ActiveKM       float64       `json:"active_km"`
	DeadKM         float64       `json:"dead_km"`
	DriverPay      float64       `json:"driver_pay"`
	CustomerFare   float64       `json:"customer_fare"`
	Profit         float64       `json:"profit"`
	Efficiency     float64       `json:"efficiency"`
	BookingsServed int           `json:"bookings_served"`
	Unassigned     int           `json:"unassigned"`
}
