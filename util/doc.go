// Package util holds small generic helpers shared across imagefeed packages.
package util
