// Package utils provides common helpers shared by the inventory features.
// It covers loose type conversion for decoded JSON (controller and cluster APIs
// return numbers and strings inconsistently), rounding and string normalization.
package utils
