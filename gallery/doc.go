// Package gallery holds the image feed domain: submitted images, their
// storage, and the payload announced to stream subscribers.
//
// Service.Submit validates and stores an image, then hands its Payload to
// a Publisher. Stores are append-only and list images in submission order.
package gallery
