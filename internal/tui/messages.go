package tui

import "github.com/kalambet/dayboard/internal/storage"

// dashboardLoadedMsg is sent after the aggregator refreshed. Fetch
// failures are carried by the aggregator's view.
type dashboardLoadedMsg struct{}

type toggledMsg struct {
	id  string
	err error
}

type journalLoadedMsg struct {
	entry storage.JournalEntry
	err   error
}

type journalSavedMsg struct {
	entry storage.JournalEntry
	err   error
}

type reflectionMsg struct {
	text string
	err  error
}

type editorLoadedMsg struct {
	tab Tab
	err error
}

type editorSavedMsg struct {
	tab Tab
	err error
}

// storeChangedMsg is sent by the file watcher when the database was written.
type storeChangedMsg struct{}

// clearMessageMsg triggers a redraw once a transient message expired.
type clearMessageMsg struct{}
