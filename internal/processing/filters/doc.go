// Package filters scores single sampled frames (or pairs of consecutive
// sampled frames) for the extraction cascade. Every function is stateless:
// cross-frame state such as the previous histogram or previous grayscale
// frame is owned by the caller and passed in.
package filters
