package ebitenbackend

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/marionette"
)

// EbitenBlend returns the ebiten.Blend for a puppet blend mode.
//
// ColorDodge has no exact fixed-function form; it falls back to additive,
// which matches it closely for the low-intensity glows it is typically
// authored with.
func EbitenBlend(mode marionette.BlendMode) ebiten.Blend {
	switch mode {
	case marionette.BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case marionette.BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case marionette.BlendColorDodge, marionette.BlendLinearDodge:
		return ebiten.BlendLighter
	case marionette.BlendClipToLower:
		return ebiten.BlendSourceAtop
	case marionette.BlendSliceFromLower:
		return ebiten.BlendSourceOut
	default:
		return ebiten.BlendSourceOver
	}
}
