package dto

// SearchRequest is a free-text query
type SearchRequest struct {
	Q string `form:"q" binding:"max=100" example:"ivan"`
}

// SearchStudentResult is a matching student
type SearchStudentResult struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ClassID   int64  `json:"classId"`
	ClassName string `json:"className"`
}

// SearchTeacherResult is a matching teacher
type SearchTeacherResult struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SearchSubjectResult is a matching subject
type SearchSubjectResult struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
}

// SearchResponse groups matches by entity kind
type SearchResponse struct {
	Query    string                `json:"query"`
	Students []SearchStudentResult `json:"students"`
	Teachers []SearchTeacherResult `json:"teachers"`
	Subjects []SearchSubjectResult `json:"subjects"`
	Total    int                   `json:"total"`
}
