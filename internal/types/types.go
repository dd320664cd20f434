package types

import "image"

// EmbeddingSize is the length of a dlib face descriptor.
const EmbeddingSize = 128

// UnknownLabel is rendered for faces that match no enrolled identity.
const UnknownLabel = "Unknown"

// Embedding is a 128-d face descriptor.
type Embedding [EmbeddingSize]float32

// Box is a face location in pixel coordinates: (top, right, bottom, left).
type Box struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// BoxFromRect converts an image.Rectangle into a Box.
func BoxFromRect(r image.Rectangle) Box {
	return Box{Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y, Left: r.Min.X}
}

// Rect returns the box as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Detection is one face found by the engine together with its embedding.
type Detection struct {
	Box       Box
	Embedding Embedding
}

// Recognition is the outcome of matching one detected face.
type Recognition struct {
	Label string `json:"label"`
	Box   Box    `json:"box"`
	Votes int    `json:"votes"`
	Known bool   `json:"known"`
}
