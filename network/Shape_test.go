package network

import (
	"errors"
	"testing"
)

func TestConvOutputSize(t *testing.T) {
	tests := []struct {
		name                                  string
		in, kernel, stride, padding, dilation int
		want                                  int
	}{
		{"atari first layer", 84, 8, 4, 0, 1, 20},
		{"atari second layer", 20, 4, 2, 0, 1, 9},
		{"atari third layer", 9, 3, 1, 0, 1, 7},
		{"same padding", 42, 3, 1, 1, 1, 42},
		{"halving", 42, 3, 2, 1, 1, 21},
		{"odd halving", 21, 3, 2, 1, 1, 11},
		{"floor", 10, 3, 4, 0, 1, 2},
		{"kernel equals input", 5, 5, 1, 0, 1, 1},
		{"padding allows large kernel", 3, 5, 1, 1, 1, 1},
		{"dilation", 10, 3, 1, 0, 2, 6},
		{"maze second layer", 7, 3, 2, 2, 1, 5},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ConvOutputSize(test.in, test.kernel, test.stride,
				test.padding, test.dilation)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != test.want {
				t.Errorf("want(%v) have(%v)", test.want, got)
			}

			// Dilation 1 must agree with ⌊(in + 2p - k) / s⌋ + 1
			if test.dilation == 1 {
				formula := (test.in+2*test.padding-test.kernel)/test.stride + 1
				if got != formula {
					t.Errorf("formula want(%v) have(%v)", formula, got)
				}
			}
		})
	}
}

func TestConvOutputSizeErrors(t *testing.T) {
	tests := []struct {
		name                                  string
		in, kernel, stride, padding, dilation int
		want                                  error
	}{
		{"kernel larger than input", 3, 5, 1, 0, 1, ErrNonPositiveOutput},
		{"kernel one larger than input", 4, 5, 2, 0, 1, ErrNonPositiveOutput},
		{"dilated kernel too large", 4, 3, 1, 0, 2, ErrNonPositiveOutput},
		{"zero input", 0, 3, 1, 1, 1, ErrInvalidConv},
		{"zero kernel", 4, 0, 1, 0, 1, ErrInvalidConv},
		{"zero stride", 4, 3, 0, 0, 1, ErrInvalidConv},
		{"negative padding", 4, 3, 1, -1, 1, ErrInvalidConv},
		{"zero dilation", 4, 3, 1, 0, 0, ErrInvalidConv},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ConvOutputSize(test.in, test.kernel, test.stride,
				test.padding, test.dilation)
			if !errors.Is(err, test.want) {
				t.Fatalf("want error %v, have %v (output %v)", test.want,
					err, got)
			}
			if !IsConfigError(err) {
				t.Errorf("error %v should be a configuration error", err)
			}
		})
	}
}

func TestConv2DOutputShape(t *testing.T) {
	got, err := Conv2DOutputShape(Dims{84, 64}, Dims{8, 4}, Dims{4, 2},
		Square(0), Square(1))
	if err != nil {
		t.Fatal(err)
	}
	if want := (Dims{20, 31}); got != want {
		t.Errorf("want(%v) have(%v)", want, got)
	}

	// Height and width are validated independently
	_, err = Conv2DOutputShape(Dims{84, 2}, Square(3), Square(1), Square(0),
		Square(1))
	if !errors.Is(err, ErrNonPositiveOutput) {
		t.Errorf("want error %v, have %v", ErrNonPositiveOutput, err)
	}
}

func TestImageShapeValidate(t *testing.T) {
	if err := NewImageShape(3, 84, 84).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	for _, shape := range []ImageShape{
		NewImageShape(0, 84, 84),
		NewImageShape(3, 0, 84),
		NewImageShape(3, 84, -1),
	} {
		if err := shape.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("shape %v: want error %v, have %v", shape,
				ErrInvalidConfig, err)
		}
	}
}
