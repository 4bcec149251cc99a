package network

import (
	"fmt"
)

// ImageShape describes the shape of a single image observation in
// channels-first order.
type ImageShape struct {
	Channels int
	Height   int
	Width    int
}

// NewImageShape returns a new ImageShape
func NewImageShape(channels, height, width int) ImageShape {
	return ImageShape{Channels: channels, Height: height, Width: width}
}

// Validate returns an error if any dimension of the ImageShape is not
// positive.
func (i ImageShape) Validate() error {
	if i.Channels <= 0 || i.Height <= 0 || i.Width <= 0 {
		return newError("validate", fmt.Errorf("%w: image shape "+
			"dimensions must be positive, have %v", ErrInvalidConfig, i))
	}
	return nil
}

// Shape returns the ImageShape as a per-sample tensor shape
func (i ImageShape) Shape() []int {
	return []int{i.Channels, i.Height, i.Width}
}

// Size returns the number of elements in a single image
func (i ImageShape) Size() int {
	return i.Channels * i.Height * i.Width
}

// String implements the fmt.Stringer interface
func (i ImageShape) String() string {
	return fmt.Sprintf("(%d, %d, %d)", i.Channels, i.Height, i.Width)
}

// Dims is a (height, width) pair used for spatial sizes and for the
// kernel, stride, padding, and dilation of a convolution.
type Dims struct {
	H, W int
}

// Square returns the Dims with both height and width equal to n
func Square(n int) Dims {
	return Dims{n, n}
}

// String implements the fmt.Stringer interface
func (d Dims) String() string {
	return fmt.Sprintf("(%d, %d)", d.H, d.W)
}

// Conv2DOutputShape returns the spatial output size of a 2D
// convolution over an input of spatial size in. Each dimension is
// computed independently as:
//
//	out = ⌊(in + 2*padding - dilation*(kernel-1) - 1) / stride⌋ + 1
//
// which for a dilation of 1 is ⌊(in + 2*padding - kernel) / stride⌋ + 1.
// An error is returned if any argument is out of range or if the
// output size is not positive.
func Conv2DOutputShape(in, kernel, stride, padding, dilation Dims) (Dims,
	error) {
	h, err := ConvOutputSize(in.H, kernel.H, stride.H, padding.H, dilation.H)
	if err != nil {
		return Dims{}, fmt.Errorf("conv2doutputshape: height: %w", err)
	}

	w, err := ConvOutputSize(in.W, kernel.W, stride.W, padding.W, dilation.W)
	if err != nil {
		return Dims{}, fmt.Errorf("conv2doutputshape: width: %w", err)
	}

	return Dims{h, w}, nil
}

// ConvOutputSize returns the output size of a convolution along a
// single spatial dimension. See Conv2DOutputShape.
func ConvOutputSize(in, kernel, stride, padding, dilation int) (int, error) {
	if in <= 0 || kernel <= 0 || stride <= 0 || dilation <= 0 ||
		padding < 0 {
		return 0, newError("convoutputsize", fmt.Errorf("%w: input=%d "+
			"kernel=%d stride=%d padding=%d dilation=%d", ErrInvalidConv,
			in, kernel, stride, padding, dilation))
	}

	span := in + 2*padding - dilation*(kernel-1) - 1
	if span < 0 {
		// ⌊span / stride⌋ + 1 <= 0 for any negative span
		return 0, newError("convoutputsize", fmt.Errorf("%w: kernel %d "+
			"(dilation %d) does not fit input %d with padding %d",
			ErrNonPositiveOutput, kernel, dilation, in, padding))
	}

	return span/stride + 1, nil
}
