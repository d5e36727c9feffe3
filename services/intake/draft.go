package intake

import (
	"sync"
	"time"

	"github.com/triologic/medrec/services/patient"
)

// Draft is the in-progress intake wizard state for one session. Nothing
// is persisted until Submit; abandoning the wizard loses the draft.
type Draft struct {
	Personal *patient.PersonalInfo   `json:"personal"`
	History  *patient.MedicalHistory `json:"history"`
	Contact  *patient.ContactInfo    `json:"contact"`
}

// StagedScan is a scan attachment held in memory until submit, keyed by
// a session-local id so individual attachments can be removed.
type StagedScan struct {
	LocalID     int    `json:"local_id"`
	FileName    string `json:"file_name"`
	MimeType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	ScanType    string `json:"scan_type"`
	ScanName    string `json:"scan_name"`
	Description string `json:"description"`
	ScanDate    string `json:"scan_date"`
	Content     []byte `json:"-"`
}

type draftState struct {
	draft       Draft
	staged      []StagedScan
	nextLocalID int
	touched     time.Time
}

// draftStore holds per-session drafts in memory. Drafts are confined to
// the session that created them and vanish on submit or expiry.
type draftStore struct {
	mu     sync.RWMutex
	drafts map[string]*draftState
	ttl    time.Duration
}

func newDraftStore(ttl time.Duration) *draftStore {
	return &draftStore{
		drafts: make(map[string]*draftState),
		ttl:    ttl,
	}
}

func (ds *draftStore) state(token string) *draftState {
	if st, ok := ds.drafts[token]; ok {
		st.touched = time.Now()
		return st
	}
	st := &draftState{nextLocalID: 1, touched: time.Now()}
	ds.drafts[token] = st
	return st
}

func (ds *draftStore) setPersonal(token string, p patient.PersonalInfo) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.state(token).draft.Personal = &p
}

func (ds *draftStore) setHistory(token string, h patient.MedicalHistory) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.state(token).draft.History = &h
}

func (ds *draftStore) setContact(token string, c patient.ContactInfo) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.state(token).draft.Contact = &c
}

func (ds *draftStore) get(token string) Draft {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.state(token).draft
}

func (ds *draftStore) stage(token string, scan StagedScan) int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	st := ds.state(token)
	scan.LocalID = st.nextLocalID
	st.nextLocalID++
	st.staged = append(st.staged, scan)
	return scan.LocalID
}

func (ds *draftStore) removeStaged(token string, localID int) bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	st := ds.state(token)
	for i, scan := range st.staged {
		if scan.LocalID == localID {
			st.staged = append(st.staged[:i], st.staged[i+1:]...)
			return true
		}
	}
	return false
}

func (ds *draftStore) listStaged(token string) []StagedScan {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	st, ok := ds.drafts[token]
	if !ok {
		return nil
	}
	out := make([]StagedScan, len(st.staged))
	copy(out, st.staged)
	return out
}

func (ds *draftStore) clear(token string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.drafts, token)
}

// prune drops drafts that have not been touched within the ttl.
func (ds *draftStore) prune() {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	cutoff := time.Now().Add(-ds.ttl)
	for token, st := range ds.drafts {
		if st.touched.Before(cutoff) {
			delete(ds.drafts, token)
		}
	}
}
