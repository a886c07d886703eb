// Package stylenet runs the compact feed-forward style network behind the
// ghibli style: one ONNX forward pass over a 512x512 NHWC image in [-1, 1].
//
// Sessions are opened against an ordered provider list. The first provider
// that constructs a session wins; earlier failures are logged as a recovery,
// not returned. Input and output names are read from the model file rather
// than assumed.
package stylenet
