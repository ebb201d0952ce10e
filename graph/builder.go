package graph

import "math/rand"

// Options parameterizes the fixed generation template.
type Options struct {
	Model          string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	CFG            float64
	SamplerName    string
	Scheduler      string
	Denoise        float64
	// Seed for the sampler. A negative value picks a random seed per build.
	Seed           int64
	FilenamePrefix string
}

// DefaultOptions returns the template defaults used when the caller does
// not override anything.
func DefaultOptions() Options {
	return Options{
		Model:          "sd_xl_base_1.0.safetensors",
		NegativePrompt: "",
		Width:          1024,
		Height:         1024,
		Steps:          20,
		CFG:            8.0,
		SamplerName:    "euler",
		Scheduler:      "normal",
		Denoise:        1.0,
		Seed:           -1,
		FilenamePrefix: "craft",
	}
}

// Build assembles the job graph for the given prompt. When imageName is
// non-empty the uploaded image is loaded, previewed, and encoded as the
// sampler's latent source; when empty the image branch is omitted
// entirely and an empty latent of the configured size is used instead.
func Build(prompt, imageName string, o Options) Graph {
	seed := o.Seed
	if seed < 0 {
		seed = rand.Int63()
	}

	g := Graph{
		CheckpointNodeID: {
			ClassType: "CheckpointLoaderSimple",
			Inputs: map[string]interface{}{
				"ckpt_name": o.Model,
			},
		},
		PositiveNodeID: {
			ClassType: "CLIPTextEncode",
			Inputs: map[string]interface{}{
				"text": prompt,
				"clip": Ref(CheckpointNodeID, 1),
			},
		},
		NegativeNodeID: {
			ClassType: "CLIPTextEncode",
			Inputs: map[string]interface{}{
				"text": o.NegativePrompt,
				"clip": Ref(CheckpointNodeID, 1),
			},
		},
		VAEDecodeNodeID: {
			ClassType: "VAEDecode",
			Inputs: map[string]interface{}{
				"samples": Ref(KSamplerNodeID, 0),
				"vae":     Ref(CheckpointNodeID, 2),
			},
		},
		SaveImageNodeID: {
			ClassType: "SaveImage",
			Inputs: map[string]interface{}{
				"images":          Ref(VAEDecodeNodeID, 0),
				"filename_prefix": o.FilenamePrefix,
			},
		},
	}

	latent := Ref(EmptyLatentNodeID, 0)
	if imageName != "" {
		g[LoadImageNodeID] = Node{
			ClassType: "LoadImage",
			Inputs: map[string]interface{}{
				"image":  imageName,
				"upload": "image",
			},
		}
		g[VAEEncodeNodeID] = Node{
			ClassType: "VAEEncode",
			Inputs: map[string]interface{}{
				"pixels": Ref(LoadImageNodeID, 0),
				"vae":    Ref(CheckpointNodeID, 2),
			},
		}
		g[PreviewImageNodeID] = Node{
			ClassType: "PreviewImage",
			Inputs: map[string]interface{}{
				"images": Ref(LoadImageNodeID, 0),
			},
		}
		latent = Ref(VAEEncodeNodeID, 0)
	} else {
		g[EmptyLatentNodeID] = Node{
			ClassType: "EmptyLatentImage",
			Inputs: map[string]interface{}{
				"width":      o.Width,
				"height":     o.Height,
				"batch_size": 1,
			},
		}
	}

	g[KSamplerNodeID] = Node{
		ClassType: "KSampler",
		Inputs: map[string]interface{}{
			"model":        Ref(CheckpointNodeID, 0),
			"positive":     Ref(PositiveNodeID, 0),
			"negative":     Ref(NegativeNodeID, 0),
			"latent_image": latent,
			"seed":         seed,
			"steps":        o.Steps,
			"cfg":          o.CFG,
			"sampler_name": o.SamplerName,
			"scheduler":    o.Scheduler,
			"denoise":      o.Denoise,
		},
	}

	return g
}
