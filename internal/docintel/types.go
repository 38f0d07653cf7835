package docintel

// Field is one named value extracted by the document model. Item arrays come
// back as ValueArray entries whose ValueObject maps sub-property names to
// nested fields.
type Field struct {
	Type        string           `json:"type,omitempty"`
	Content     string           `json:"content,omitempty"`
	Confidence  float64          `json:"confidence,omitempty"`
	ValueArray  []Field          `json:"valueArray,omitempty"`
	ValueObject map[string]Field `json:"valueObject,omitempty"`
}

// Document is one recognized document instance with its field mapping.
type Document struct {
	DocType    string           `json:"docType,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
	Fields     map[string]Field `json:"fields"`
}

// Line is one line of recognized page text, in reading order.
type Line struct {
	Content string `json:"content"`
}

// Page carries the page-level raw text lines.
type Page struct {
	PageNumber int    `json:"pageNumber,omitempty"`
	Lines      []Line `json:"lines,omitempty"`
}

// AnalyzeResult is the completed output of one analyze operation. Documents
// may be empty when the model found no recognizable structure; Content and
// Pages still carry whatever text was read.
type AnalyzeResult struct {
	ModelID   string     `json:"modelId,omitempty"`
	Content   string     `json:"content,omitempty"`
	Pages     []Page     `json:"pages,omitempty"`
	Documents []Document `json:"documents,omitempty"`
}

// Text returns the raw extracted text: the whole-document content when
// present, otherwise the page lines joined with newlines.
func (r *AnalyzeResult) Text() string {
	if r.Content != "" {
		return r.Content
	}
	var b []byte
	for _, p := range r.Pages {
		for _, l := range p.Lines {
			if len(b) > 0 {
				b = append(b, '\n')
			}
			b = append(b, l.Content...)
		}
	}
	return string(b)
}

type analyzeOperation struct {
	Status        string         `json:"status"`
	AnalyzeResult *AnalyzeResult `json:"analyzeResult,omitempty"`
	Error         *serviceError  `json:"error,omitempty"`
}

type serviceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
