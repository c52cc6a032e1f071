package artifact

import "fmt"

// Phase is a step in generating one artifact.
type Phase int

// Generation phases. Pending moves to Written once the file exists, then to
// Recorded once the row is stored. Any failure before Recorded ends in
// Failed, which is itself recorded.
const (
	PhasePending Phase = iota
	PhaseWritten
	PhaseRecorded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseWritten:
		return "written"
	case PhaseRecorded:
		return "recorded"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Item is the result of one (template, mapping) generation attempt.
type Item struct {
	MappingID int64
	Name      string
	Phase     Phase
	Artifact  Artifact
	Err       error
}

// Succeeded reports whether the item reached Recorded.
func (i Item) Succeeded() bool { return i.Phase == PhaseRecorded }

// BatchResult summarizes a batch. A batch always completes; failures are
// counted per item.
type BatchResult struct {
	Items []Item
}

// Succeeded counts recorded items.
func (b BatchResult) Succeeded() int {
	n := 0
	for _, it := range b.Items {
		if it.Succeeded() {
			n++
		}
	}
	return n
}

// Failed counts items that did not reach Recorded.
func (b BatchResult) Failed() int { return len(b.Items) - b.Succeeded() }

// Files lists filenames of recorded items in batch order.
func (b BatchResult) Files() []string {
	var files []string
	for _, it := range b.Items {
		if it.Succeeded() {
			files = append(files, it.Artifact.Filename())
		}
	}
	return files
}
