package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/theoremus-urban-solutions/geotren-matcher/formatter"
	"github.com/theoremus-urban-solutions/geotren-matcher/matching"
	"github.com/theoremus-urban-solutions/geotren-matcher/publish"
	"github.com/theoremus-urban-solutions/geotren-matcher/schedule"
	"github.com/theoremus-urban-solutions/geotren-matcher/siri"
)

type healthResponse struct {
	Status         string     `json:"status"`
	ScheduleLoaded bool       `json:"scheduleLoaded"`
	Runs           int        `json:"runs"`
	LastCycle      *time.Time `json:"lastCycle,omitempty"`
	Tracked        int        `json:"tracked"`
	Clients        int        `json:"wsClients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	store := s.backend.Store()
	resp := healthResponse{
		Status:         "ok",
		ScheduleLoaded: store.Len() > 0,
		Runs:           store.Len(),
	}
	if last := s.backend.LastCycle(); !last.IsZero() {
		resp.LastCycle = &last
	}
	if p := s.latest.Get(); p != nil {
		resp.Tracked = p.Matched
	}
	if s.hub != nil {
		resp.Clients = s.hub.Clients()
	}
	writeJSON(w, http.StatusOK, resp)
}

type trainsResponse struct {
	At      time.Time       `json:"at"`
	Notice  string          `json:"notice,omitempty"`
	Trains  []publish.Train `json:"trains"`
	Matched int             `json:"matched"`
	Delayed int             `json:"delayed"`
}

func (s *Server) handleTrains(w http.ResponseWriter, r *http.Request) {
	resp := trainsResponse{Trains: []publish.Train{}}
	if p := s.latest.Get(); p != nil {
		resp.At = p.At
		resp.Notice = p.Notice
		resp.Trains = p.Trains
		resp.Matched = p.Matched
		resp.Delayed = p.Delayed
	}
	if line := r.URL.Query().Get("line"); line != "" {
		filtered := make([]publish.Train, 0, len(resp.Trains))
		for _, t := range resp.Trains {
			if t.Line == schedule.LinePrefix(line) {
				filtered = append(filtered, t)
			}
		}
		resp.Trains = filtered
	}
	writeJSON(w, http.StatusOK, resp)
}

type matchesResponse struct {
	Cycle   string            `json:"cycle,omitempty"`
	At      time.Time         `json:"at"`
	Notice  string            `json:"notice,omitempty"`
	Results []matching.Result `json:"results"`
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	resp := matchesResponse{Results: []matching.Result{}}
	if p := s.latest.Get(); p != nil {
		resp.Cycle = p.ID
		resp.At = p.At
		resp.Notice = p.Notice
		resp.Results = p.Results
	}
	writeJSON(w, http.StatusOK, resp)
}

type runSummary struct {
	Code      string `json:"code"`
	Line      string `json:"line"`
	Direction string `json:"direction"`
	Stops     int    `json:"stops"`
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	store := s.backend.Store()
	if store.Len() == 0 {
		writeError(w, http.StatusServiceUnavailable, "no_schedule")
		return
	}
	runs := make([]runSummary, 0, store.Len())
	for _, run := range store.Runs() {
		runs = append(runs, runSummary{
			Code:      run.Code,
			Line:      run.Line,
			Direction: run.Direction,
			Stops:     len(store.OrderedStops(run)),
		})
	}
	writeJSON(w, http.StatusOK, runs)
}

type itineraryResponse struct {
	Code      string                 `json:"code"`
	Line      string                 `json:"line"`
	Direction string                 `json:"direction"`
	Stops     []schedule.OrderedStop `json:"stops"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	store := s.backend.Store()
	stops, err := store.Itinerary(code)
	switch {
	case errors.Is(err, schedule.ErrNoSchedule):
		writeError(w, http.StatusServiceUnavailable, "no_schedule")
		return
	case errors.Is(err, schedule.ErrUnknownRun):
		writeError(w, http.StatusNotFound, "unknown_run")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	run, _ := store.Run(code)
	writeJSON(w, http.StatusOK, itineraryResponse{
		Code:      run.Code,
		Line:      run.Line,
		Direction: run.Direction,
		Stops:     stops,
	})
}

func (s *Server) handleLoadSchedule(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxScheduleSize)
	store, err := schedule.NewStoreFromReader(body)
	if err != nil {
		var verr *schedule.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_schedule", "detail": verr.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json", "detail": err.Error()})
		return
	}
	s.backend.LoadSchedule(store)
	s.logger.Info().Int("runs", store.Len()).Str("remote", r.RemoteAddr).Msg("schedule uploaded")
	writeJSON(w, http.StatusAccepted, map[string]int{"runs": store.Len()})
}

func (s *Server) vehicleMonitoring(r *http.Request) *siri.SiriResponse {
	at := time.Now()
	var trains []publish.Train
	if p := s.latest.Get(); p != nil {
		at = p.At
		trains = p.Trains
	}
	vm := siri.BuildVehicleMonitoring(trains, at, s.opts.RefreshInterval, s.opts.Codespace)
	q := r.URL.Query()
	vm = formatter.FilterVehicleMonitoring(vm, q.Get("lineRef"), q.Get("directionRef"), q.Get("vehicleRef"))
	return formatter.WrapVehicleMonitoringResponse(vm, at, s.opts.Codespace)
}

func (s *Server) handleVehicleMonitoringJSON(w http.ResponseWriter, r *http.Request) {
	buf, err := formatter.NewResponseBuilder().BuildJSON(s.vehicleMonitoring(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode_failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf)
}

func (s *Server) handleVehicleMonitoringXML(w http.ResponseWriter, r *http.Request) {
	buf := formatter.NewResponseBuilder().BuildXML(s.vehicleMonitoring(r))
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(buf)
}

func (s *Server) estimatedTimetable() *siri.SiriResponse {
	at := time.Now()
	var trains []publish.Train
	if p := s.latest.Get(); p != nil {
		at = p.At
		trains = p.Trains
	}
	et := siri.BuildEstimatedTimetable(s.backend.Store(), trains, at, s.opts.Codespace)
	return formatter.WrapEstimatedTimetableResponse(et, at, s.opts.Codespace)
}

func (s *Server) handleEstimatedTimetableJSON(w http.ResponseWriter, r *http.Request) {
	buf, err := formatter.NewResponseBuilder().BuildJSON(s.estimatedTimetable())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode_failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf)
}

func (s *Server) handleEstimatedTimetableXML(w http.ResponseWriter, r *http.Request) {
	buf := formatter.NewResponseBuilder().BuildXML(s.estimatedTimetable())
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(buf)
}
