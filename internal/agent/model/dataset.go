package model

// ImageAsset is one entry of a record's image wall.
type ImageAsset struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// DocumentAsset is the optional single proposal document of a record.
type DocumentAsset struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Size string `json:"size"`
}

type Assets struct {
	Images   []ImageAsset   `json:"images"`
	Document *DocumentAsset `json:"pdf,omitempty"`
}

// CandidateRecord is one competing proposal. ID is immutable; every ordered
// list keeps insertion/reorder order.
type CandidateRecord struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Abbr       string   `json:"abbr"`
	ThemeColor string   `json:"themeColor"`
	LogoLetter string   `json:"logoLetter"`
	Concept    string   `json:"concept"`
	Extracts   []string `json:"extracts"`
	Pros       []string `json:"pros"`
	Cons       []string `json:"cons"`
	Summary    string   `json:"summary"`
	Assets     Assets   `json:"assets"`
}

// ScheduleEntry is one timeline milestone.
type ScheduleEntry struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Status      string `json:"status,omitempty"`
}

const ScheduleStatusDelayed = "delayed"

// DatasetSnapshot is the full persisted dataset.
type DatasetSnapshot struct {
	Records     []CandidateRecord `json:"records"`
	TotalBudget float64           `json:"totalBudget"`
	Schedule    []ScheduleEntry   `json:"schedule"`
}

// StoredDataset is what a store found. Nil fields were absent.
type StoredDataset struct {
	Records     []CandidateRecord
	TotalBudget *float64
	Schedule    []ScheduleEntry
}

// Empty reports whether nothing was persisted yet.
func (s StoredDataset) Empty() bool {
	return s.Records == nil && s.TotalBudget == nil && s.Schedule == nil
}

// Clone returns a deep copy sharing no slices with r.
func (r CandidateRecord) Clone() CandidateRecord {
	out := r
	out.Extracts = cloneStrings(r.Extracts)
	out.Pros = cloneStrings(r.Pros)
	out.Cons = cloneStrings(r.Cons)
	if r.Assets.Images != nil {
		out.Assets.Images = make([]ImageAsset, len(r.Assets.Images))
		copy(out.Assets.Images, r.Assets.Images)
	}
	if r.Assets.Document != nil {
		doc := *r.Assets.Document
		out.Assets.Document = &doc
	}
	return out
}

// WithImagesAppended returns a copy with images added at the end of the wall.
func (r CandidateRecord) WithImagesAppended(images ...ImageAsset) CandidateRecord {
	out := r.Clone()
	out.Assets.Images = append(out.Assets.Images, images...)
	return out
}

// WithoutImage returns a copy with the image at idx removed. Out-of-range
// indices yield an unchanged copy.
func (r CandidateRecord) WithoutImage(idx int) CandidateRecord {
	out := r.Clone()
	if idx < 0 || idx >= len(out.Assets.Images) {
		return out
	}
	out.Assets.Images = append(out.Assets.Images[:idx], out.Assets.Images[idx+1:]...)
	return out
}

// WithImageMoved returns a copy with the image at from reinserted at to.
func (r CandidateRecord) WithImageMoved(from, to int) CandidateRecord {
	out := r.Clone()
	n := len(out.Assets.Images)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return out
	}
	moved := out.Assets.Images[from]
	images := append(out.Assets.Images[:from:from], out.Assets.Images[from+1:]...)
	images = append(images[:to], append([]ImageAsset{moved}, images[to:]...)...)
	out.Assets.Images = images
	return out
}

// WithDocument returns a copy with the document attached or replaced.
func (r CandidateRecord) WithDocument(doc DocumentAsset) CandidateRecord {
	out := r.Clone()
	out.Assets.Document = &doc
	return out
}

func CloneRecords(records []CandidateRecord) []CandidateRecord {
	if records == nil {
		return nil
	}
	out := make([]CandidateRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

func CloneSchedule(entries []ScheduleEntry) []ScheduleEntry {
	if entries == nil {
		return nil
	}
	out := make([]ScheduleEntry, len(entries))
	copy(out, entries)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
