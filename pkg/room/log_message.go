package room

import (
	"recall-server/pkg/playable"
	"recall-server/pkg/recall"
)

const logMessageLimit = 25

// addLogMessages adds log messages, keeping the most recent logMessageLimit
// Note: this must only be called from within the run loop
func (m *Match) addLogMessages(messages []*playable.LogMessage) {
	lm := append(m.logMessages, messages...)
	count := len(lm)
	if count > logMessageLimit {
		lm = lm[count-logMessageLimit:]
	}

	m.logMessages = lm
	m.stateChanged = true

	logs := append([]*playable.LogMessage{}, lm...)
	m.merge(map[string]interface{}{string(recall.KeyLogMessages): logs})
}
