package bake

import (
	"fmt"
	"image/color"

	"github.com/Faultbox/meshbake/internal/config"
)

// ChannelKind identifies one surface-material image channel.
type ChannelKind int

const (
	Albedo ChannelKind = iota + 1
	Normal
	Specular
	Metallic
	AO
)

// ChannelKinds lists every known kind.
var ChannelKinds = []ChannelKind{Albedo, Normal, Specular, Metallic, AO}

func (k ChannelKind) String() string {
	switch k {
	case Albedo:
		return "Albedo"
	case Normal:
		return "Normal"
	case Specular:
		return "Specular"
	case Metallic:
		return "Metallic"
	case AO:
		return "AO"
	default:
		return fmt.Sprintf("ChannelKind(%d)", int(k))
	}
}

// Valid reports whether k is a known kind.
func (k ChannelKind) Valid() bool {
	return k >= Albedo && k <= AO
}

// ParseChannelKind maps a lowercase manifest key to a kind.
func ParseChannelKind(s string) (ChannelKind, error) {
	switch s {
	case "albedo":
		return Albedo, nil
	case "normal":
		return Normal, nil
	case "specular":
		return Specular, nil
	case "metallic":
		return Metallic, nil
	case "ao", "occlusion":
		return AO, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedChannelKind, s)
}

// SlotFor returns the material slot an atlas of kind k is bound to.
func SlotFor(k ChannelKind) (string, error) {
	switch k {
	case Albedo:
		return "baseColorTexture", nil
	case Normal:
		return "normalTexture", nil
	case Specular:
		return "specularGlossinessTexture", nil
	case Metallic:
		return "metallicRoughnessTexture", nil
	case AO:
		return "occlusionTexture", nil
	}
	return "", fmt.Errorf("%w: %v", ErrUnsupportedChannelKind, k)
}

// DefaultFill returns the color used for a unique mesh whose material lacks
// kind k. Albedo has no default.
func DefaultFill(k ChannelKind) (color.NRGBA, error) {
	switch k {
	case Albedo:
		return color.NRGBA{}, fmt.Errorf("%w: %v has no default", ErrMissingRequiredChannel, k)
	case Normal:
		return color.NRGBA{R: 128, G: 128, B: 255, A: 255}, nil
	case Specular, Metallic:
		return color.NRGBA{R: 128, G: 128, B: 128, A: 255}, nil
	case AO:
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}, nil
	}
	return color.NRGBA{}, fmt.Errorf("%w: %v", ErrUnsupportedChannelKind, k)
}

// IsLinear reports whether the atlas of kind k holds non-color data.
// legacySRGB keeps specular and metallic atlases in sRGB.
func IsLinear(k ChannelKind, legacySRGB bool) (bool, error) {
	switch k {
	case Albedo, AO:
		return false, nil
	case Normal:
		return true, nil
	case Specular, Metallic:
		return !legacySRGB, nil
	}
	return false, fmt.Errorf("%w: %v", ErrUnsupportedChannelKind, k)
}

// KeywordFor returns the shader keyword enabled alongside kind k, or "".
func KeywordFor(k ChannelKind) (string, error) {
	switch k {
	case Albedo:
		return "", nil
	case Normal:
		return "NORMALMAP", nil
	case Specular:
		return "SPECGLOSSMAP", nil
	case Metallic:
		return "METALLICGLOSSMAP", nil
	case AO:
		return "OCCLUSIONMAP", nil
	}
	return "", fmt.Errorf("%w: %v", ErrUnsupportedChannelKind, k)
}

// FileName returns the atlas file name for kind k, e.g. BakedAlbedo_lod0.png.
func FileName(k ChannelKind, suffix, format string) (string, error) {
	if !k.Valid() {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedChannelKind, k)
	}
	return "Baked" + k.String() + suffix + "." + format, nil
}

// MaterialFileName, MeshFileName and ReportFileName name the other outputs.
func MaterialFileName(suffix string) string { return "BakedMaterial" + suffix + ".yaml" }
func MeshFileName(suffix string) string     { return "BakedMesh" + suffix + ".glb" }
func ReportFileName(suffix string) string   { return "BakeReport" + suffix + ".yaml" }

// ShaderFor returns the shader the baked material uses in a workflow.
func ShaderFor(workflow string) string {
	if workflow == config.WorkflowMetallic {
		return "Standard"
	}
	return "Standard (Specular setup)"
}
