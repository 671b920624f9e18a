package dto

// SequenceRequest body para PUT /api/sequences/:kind.
type SequenceRequest struct {
	Prefix     string `json:"prefix"`
	DateFormat string `json:"date_format"`
	Next       int64  `json:"next"`
}

// SequenceResponse numeración de un tipo. Preview es el número que recibirá el próximo documento.
type SequenceResponse struct {
	Kind       string `json:"kind"`
	Prefix     string `json:"prefix"`
	DateFormat string `json:"date_format"`
	Next       int64  `json:"next"`
	Preview    string `json:"preview"`
}

// SequenceEvent mensaje publicado en la sala sequence:<kind> cuando avanza la numeración.
type SequenceEvent struct {
	Kind    string `json:"kind"`
	Next    int64  `json:"next"`
	Preview string `json:"preview"`
}
