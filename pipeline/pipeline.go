// Package pipeline provides small channel stages for streaming rows and scores through the
// command line tool. Every stage stops when ctx is done and closes its output stream.
package pipeline

import (
	"context"
)

const streamBufferSize = 8

// Seq emits 0, 1, ..., n-1.
func Seq(ctx context.Context, n uint) <-chan int {
	outputStream := make(chan int, streamBufferSize)
	go func() {
		defer close(outputStream)
		for i := uint(0); i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case outputStream <- int(i):
			}
		}
	}()

	return outputStream
}

func Map[T, U any](ctx context.Context, inputStream <-chan T, f func(T) U) <-chan U {
	outputStream := make(chan U, streamBufferSize)
	go func() {
		defer close(outputStream)
		for item := range OrDone(ctx, inputStream) {
			select {
			case <-ctx.Done():
				return
			case outputStream <- f(item):
			}
		}
	}()

	return outputStream
}

func Filter[T any](ctx context.Context, inputStream <-chan T, predicate func(T) bool) <-chan T {
	outputStream := make(chan T, streamBufferSize)
	go func() {
		defer close(outputStream)
		for item := range OrDone(ctx, inputStream) {
			if !predicate(item) {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case outputStream <- item:
			}
		}
	}()

	return outputStream
}

// Take forwards at most n items. n == 0 forwards everything. Take stops reading once n items are
// forwarded, so the stages upstream are released only by cancelling ctx.
func Take[T any](ctx context.Context, n uint, inputStream <-chan T) <-chan T {
	outputStream := make(chan T, streamBufferSize)
	go func() {
		defer close(outputStream)

		for i := uint(0); n == 0 || i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-inputStream:
				if !ok {
					return
				}

				select {
				case <-ctx.Done():
					return
				case outputStream <- item:
				}
			}
		}
	}()

	return outputStream
}

func ToSlice[T any](ctx context.Context, inputStream <-chan T) []T {
	output := make([]T, 0)
	for item := range OrDone(ctx, inputStream) {
		output = append(output, item)
	}

	return output
}

func OrDone[T any](ctx context.Context, inputStream <-chan T) <-chan T {
	outputStream := make(chan T, streamBufferSize)
	go func() {
		defer close(outputStream)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-inputStream:
				if !ok {
					return
				}

				select {
				case <-ctx.Done():
				case outputStream <- v:
				}
			}
		}
	}()

	return outputStream
}
