package pipeline

import (
	"github.com/Carmen-Shannon/oxy-envmat/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

var channelMasks = [4]wgpu.ColorWriteMask{
	wgpu.ColorWriteMaskRed,
	wgpu.ColorWriteMaskGreen,
	wgpu.ColorWriteMaskBlue,
	wgpu.ColorWriteMaskAlpha,
}

// blend evaluates the fixed-function blend equation on the CPU. Constant
// based factors are not supported and behave as One.
func blend(state *wgpu.BlendState, src, dst mgl32.Vec4) mgl32.Vec4 {
	var out mgl32.Vec4
	for i := range 4 {
		c := state.Color
		if i == 3 {
			c = state.Alpha
		}
		s := src[i] * factor(c.SrcFactor, src, dst, i)
		d := dst[i] * factor(c.DstFactor, src, dst, i)
		out[i] = operate(c.Operation, s, d, src[i], dst[i])
	}
	return out
}

func factor(f wgpu.BlendFactor, src, dst mgl32.Vec4, ch int) float32 {
	switch f {
	case wgpu.BlendFactorZero:
		return 0
	case wgpu.BlendFactorSrc:
		return src[ch]
	case wgpu.BlendFactorOneMinusSrc:
		return 1 - src[ch]
	case wgpu.BlendFactorSrcAlpha:
		return src[3]
	case wgpu.BlendFactorOneMinusSrcAlpha:
		return 1 - src[3]
	case wgpu.BlendFactorDst:
		return dst[ch]
	case wgpu.BlendFactorOneMinusDst:
		return 1 - dst[ch]
	case wgpu.BlendFactorDstAlpha:
		return dst[3]
	case wgpu.BlendFactorOneMinusDstAlpha:
		return 1 - dst[3]
	default:
		return 1
	}
}

// operate applies the blend operation. Min and Max ignore the factors.
func operate(op wgpu.BlendOperation, s, d, src, dst float32) float32 {
	switch op {
	case wgpu.BlendOperationSubtract:
		return s - d
	case wgpu.BlendOperationReverseSubtract:
		return d - s
	case wgpu.BlendOperationMin:
		return min(src, dst)
	case wgpu.BlendOperationMax:
		return max(src, dst)
	default:
		return s + d
	}
}

func applyWriteMask(mask wgpu.ColorWriteMask, out, dst mgl32.Vec4) mgl32.Vec4 {
	out = common.Saturate4(out)
	for i, m := range channelMasks {
		if mask&m == 0 {
			out[i] = dst[i]
		}
	}
	return out
}
