// Package logger wraps zerolog with the field-map calling convention used
// across imagefeed: every call takes a message plus optional
// map[string]interface{} fields, and components log through child loggers
// tagged with their name.
//
//	log := logger.WithComponent("gallery")
//	log.Info("Image stored", map[string]interface{}{"id": img.ID})
package logger
