// Package styles defines the closed set of style identifiers DreamInk
// understands and the presets the generative backends run with.
//
// Each style belongs to exactly one backend family:
//
//	Generative  pixar, cartoon, comic   diffusion img2img pipeline
//	Network     ghibli                  single-pass ONNX style network
//	Classical   oil, sketch             pure pixel filters, no handle
//
// The default catalog can be partially overridden from a YAML file so prompts
// and sampler settings can be adjusted without a rebuild.
package styles
