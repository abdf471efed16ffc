// Cleanup of abandoned drafts.
//
// A record whose content decodes to an empty table is a draft that was
// created but never filled in. It is removed while its lock is still held
// by this process: the content is re-read under the lock to confirm it is
// still empty, then the file is deleted and the lock released in the order
// the platform allows (see handle.remove).
package shelf

// reconcile deletes the record behind h if its content is still empty.
// It reports false, leaving h held, when the record has real content.
// Once removed, h is released; a file that is already gone is not an error,
// so running it again over the same directory is a no-op.
func reconcile(h *handle) (bool, error) {
	data, err := h.read()
	if err != nil {
		return false, err
	}
	if outcome, _, _ := Decode(data); outcome != OutcomeEmpty {
		return false, nil
	}
	if err := h.remove(); err != nil {
		return false, err
	}
	return true, nil
}
