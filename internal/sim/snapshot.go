package sim

// Snapshot is a point-in-time view of the run for the monitor's JSON API
// and charts. It contains only plain values so it can be marshalled while
// the run keeps ticking.
type Snapshot struct {
	RunID      string          `json:"run_id"`
	Tick       int             `json:"tick"`
	Done       bool            `json:"done"`
	CaveWidth  int             `json:"cave_width"`
	CaveHeight int             `json:"cave_height"`
	TotalCells int             `json:"total_cells"`
	Drones     []DroneSnapshot `json:"drones"`
}

// DroneSnapshot is one drone's public state within a Snapshot.
type DroneSnapshot struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Bearing    float64 `json:"bearing"`
	Complete   bool    `json:"complete"`
	KnownCells int     `json:"known_cells"`
	Travelled  float64 `json:"dist_travelled"`
}

// Snapshot captures the current fleet state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		RunID:      r.runID,
		Tick:       r.tick,
		Done:       r.done,
		CaveWidth:  r.cfg.Cave.Width(),
		CaveHeight: r.cfg.Cave.Height(),
		TotalCells: r.cfg.Cave.Width() * r.cfg.Cave.Height(),
	}
	for _, d := range r.drones {
		p := d.Pose()
		st := d.Stats()
		snap.Drones = append(snap.Drones, DroneSnapshot{
			ID:         d.ID(),
			Name:       d.Name(),
			X:          p.X,
			Y:          p.Y,
			Bearing:    p.Bearing,
			Complete:   st.Complete,
			KnownCells: d.KnownCells(),
			Travelled:  st.DistTravelled,
		})
	}
	return snap
}
