package elapsed

// SubscriberCount returns the number of live subscriptions.
func (e *Engine) SubscriberCount() int {
	return len(e.elapsedSubs.subs) + len(e.lapSubs.subs) + len(e.stopSubs.subs)
}
