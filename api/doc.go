// Package api wires the image feed's HTTP surface onto a gin router:
//
//	GET  /                   gallery page
//	GET  /api/v1/images      stored images as JSON
//	POST /api/v1/send_image  submit an image (optionally bearer-guarded)
//	GET  /stream/listen      event stream of new images
//	GET  /static/*filepath   embedded page assets
package api
