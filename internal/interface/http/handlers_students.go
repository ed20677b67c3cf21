package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/landmark-lsms/lsms-backend/internal/domain/record"
)

// levelFromQuery parses the level query parameter.
func levelFromQuery(r *http.Request) (record.Level, error) {
	return record.ParseLevel(r.URL.Query().Get("level"))
}

// handleUpsertStudent adds or replaces a student record. The body is an
// open bag of fields; only level and roll_number are interpreted here,
// everything else passes through to storage unchanged.
func (s *Server) handleUpsertStudent(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	rawLevel, _ := body["level"].(string)
	level, err := record.ParseLevel(rawLevel)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	rollRaw := body["roll_number"]
	delete(body, "level")
	delete(body, "roll_number")

	if err := s.deps.Roster.Upsert(r.Context(), level, rollRaw, body); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Student record added/updated for level %s.", level),
	})
}

// handleListStudents returns the full partition for a level.
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	level, err := levelFromQuery(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	records, err := s.deps.Roster.List(r.Context(), level)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// handleGetStudent returns one record by roll number and level.
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	level, err := levelFromQuery(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	rec, err := s.deps.Roster.GetByRoll(r.Context(), level, r.PathValue("roll_number"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// handleGetAverage returns the grade average for one student.
func (s *Server) handleGetAverage(w http.ResponseWriter, r *http.Request) {
	level, err := levelFromQuery(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	avg, err := s.deps.Roster.Average(r.Context(), level, r.PathValue("roll_number"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]float64{"average": avg})
}

// handleClassList returns the name+roll projection of one partition.
func (s *Server) handleClassList(w http.ResponseWriter, r *http.Request) {
	level, err := levelFromQuery(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	entries, err := s.deps.Roster.ClassList(r.Context(), level)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// handleCrossCheck runs the identity cross-check. The outcome is always
// a 200 with a status field; only the statuses distinguish results.
func (s *Server) handleCrossCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Roll any    `json:"roll_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusOK, record.Verification{Status: record.StatusInvalid})
		return
	}

	roll := ""
	if req.Roll != nil {
		roll = fmt.Sprintf("%v", req.Roll)
	}

	verification, err := s.deps.CrossCheck.Verify(r.Context(), req.Name, roll)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, verification)
}

// partitionLookupRequest addresses a record inside one partition by the
// string form of its roll number.
type partitionLookupRequest struct {
	Level      string `json:"level" validate:"required"`
	RollNumber string `json:"roll_number" validate:"required"`
}

// handlePartitionSearch looks a record up by roll-number string, with
// no range check.
func (s *Server) handlePartitionSearch(w http.ResponseWriter, r *http.Request) {
	var req partitionLookupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	level, err := record.ParseLevel(req.Level)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	rec, err := s.deps.Roster.FindByRollString(r.Context(), level, req.RollNumber)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// handlePartitionAverage computes the grade average of a record found
// by roll-number string.
func (s *Server) handlePartitionAverage(w http.ResponseWriter, r *http.Request) {
	var req partitionLookupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	level, err := record.ParseLevel(req.Level)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	rec, err := s.deps.Roster.FindByRollString(r.Context(), level, req.RollNumber)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]float64{"average": rec.Average()})
}
