package main

// Swagger general info. docs/ is produced by
// `swag init -g cmd/detectd/docs.go` and served with -tags=swagger.
//
// @title           detectd API
// @version         1.0
// @description     Object detection over HTTP. POST a base64 or data-URL image
// @description     to /infer and get labelled boxes in source pixels, highest
// @description     confidence first.
//
// @tag.name         inference
// @tag.description  Run the loaded detection model.
// @tag.name         service
// @tag.description  Health, readiness, status and label table.
//
// @accept   json
// @produce  json
//
// @BasePath  /
// @schemes   http
