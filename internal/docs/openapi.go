package docs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/ternarybob/snapdiff/internal/common"
)

// Spec builds the OpenAPI document describing the HTTP surface.
func Spec() *openapi3.T {
	jsonContent := func(schema *openapi3.SchemaRef) openapi3.Content {
		return openapi3.Content{
			"application/json": &openapi3.MediaType{Schema: schema},
		}
	}

	batchSchema := openapi3.NewSchemaRef("#/components/schemas/SnapShotBatch", nil)
	jobSchema := openapi3.NewSchemaRef("#/components/schemas/BatchJob", nil)
	errorSchema := openapi3.NewSchemaRef("#/components/schemas/Error", nil)

	arrayOf := func(items *openapi3.SchemaRef) *openapi3.SchemaRef {
		schema := openapi3.NewArraySchema()
		schema.Items = items
		return openapi3.NewSchemaRef("", schema)
	}

	respRef := func(description string, schema *openapi3.SchemaRef) *openapi3.ResponseRef {
		return &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &description,
				Content:     jsonContent(schema),
			},
		}
	}

	imageSchema := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("path", openapi3.NewStringSchema()).
		WithProperty("width", openapi3.NewFloat64Schema()).
		WithProperty("height", openapi3.NewFloat64Schema())

	diffSetSchema := openapi3.NewObjectSchema().
		WithPropertyRef("new", openapi3.NewSchemaRef("", imageSchema)).
		WithPropertyRef("old", openapi3.NewSchemaRef("", imageSchema)).
		WithPropertyRef("color_diff", openapi3.NewSchemaRef("", imageSchema)).
		WithPropertyRef("lcs_diff", openapi3.NewSchemaRef("", imageSchema))

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Snapdiff",
			Description: "Visual regression service for component gallery builds",
			Version:     common.GetVersion(),
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/ping", &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary:   "Liveness probe",
					Responses: openapi3.NewResponses(openapi3.WithStatus(200, respRef("Service is up", nil))),
				},
			}),
			openapi3.WithPath("/api/snap-shots", &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary: "List all batches",
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(200, respRef("All batches with their snapshots", arrayOf(batchSchema))),
					),
				},
				Post: &openapi3.Operation{
					Summary: "Run a comparison of two gallery builds",
					RequestBody: &openapi3.RequestBodyRef{
						Value: openapi3.NewRequestBody().WithJSONSchema(
							openapi3.NewObjectSchema().
								WithProperty("new", openapi3.NewStringSchema().WithFormat("uri")).
								WithProperty("old", openapi3.NewStringSchema().WithFormat("uri")).
								WithRequired([]string{"new", "old"}),
						),
					},
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(200, respRef("Completed batch", batchSchema)),
						openapi3.WithStatus(400, respRef("Invalid request body", errorSchema)),
						openapi3.WithStatus(500, respRef("Batch run failed", errorSchema)),
					),
				},
			}),
			openapi3.WithPath("/api/snap-shots/{id}", &openapi3.PathItem{
				Parameters: openapi3.Parameters{
					&openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())},
				},
				Get: &openapi3.Operation{
					Summary: "Get one batch",
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(200, respRef("Batch with its snapshots", batchSchema)),
						openapi3.WithStatus(404, respRef("Unknown batch id", errorSchema)),
					),
				},
				Delete: &openapi3.Operation{
					Summary: "Delete one batch and its snapshots",
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(204, respRef("Deleted", nil)),
						openapi3.WithStatus(404, respRef("Unknown batch id", errorSchema)),
					),
				},
			}),
			openapi3.WithPath("/api/jobs", &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary: "List running jobs",
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(200, respRef("Jobs that have not completed", arrayOf(jobSchema))),
					),
				},
			}),
			openapi3.WithPath("/api/jobs/{id}", &openapi3.PathItem{
				Parameters: openapi3.Parameters{
					&openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())},
				},
				Get: &openapi3.Operation{
					Summary: "Get one job",
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(200, respRef("Job record", jobSchema)),
						openapi3.WithStatus(404, respRef("Unknown job id", errorSchema)),
					),
				},
			}),
			openapi3.WithPath("/api/admin/clean-up", &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary: "Erase all batches, jobs and assets",
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(200, respRef("Everything removed", nil)),
					),
				},
				Post: &openapi3.Operation{
					Summary: "Erase all batches, jobs and assets",
					Responses: openapi3.NewResponses(
						openapi3.WithStatus(200, respRef("Everything removed", nil)),
					),
				},
			}),
		),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				"Error": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
					WithProperty("status", openapi3.NewStringSchema()).
					WithProperty("error", openapi3.NewStringSchema())),
				"BatchImage": openapi3.NewSchemaRef("", imageSchema),
				"DiffImageSet": openapi3.NewSchemaRef("", diffSetSchema),
				"SnapShotBatch": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
					WithProperty("id", openapi3.NewStringSchema()).
					WithProperty("name", openapi3.NewStringSchema()).
					WithProperty("created_at", openapi3.NewStringSchema()).
					WithProperty("new_story_book_version", openapi3.NewStringSchema()).
					WithProperty("old_story_book_version", openapi3.NewStringSchema()).
					WithPropertyRef("created_image_paths", openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(imageSchema))).
					WithPropertyRef("deleted_image_paths", openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(imageSchema))).
					WithPropertyRef("diff_image", openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(diffSetSchema)))),
				"BatchJob": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
					WithProperty("id", openapi3.NewStringSchema()).
					WithProperty("snap_shot_batch_id", openapi3.NewStringSchema().WithNullable()).
					WithProperty("status", openapi3.NewStringSchema().WithEnum("Pending", "Processing", "Completed", "Failed")).
					WithProperty("progress", openapi3.NewFloat64Schema()).
					WithProperty("created_at", openapi3.NewStringSchema()).
					WithProperty("updated_at", openapi3.NewStringSchema())),
			},
		},
	}

	return doc
}

// SpecHandler serves the OpenAPI document.
func SpecHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Spec())
}

// Save writes the OpenAPI document to a file.
func Save(path string) error {
	data, err := json.MarshalIndent(Spec(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal openapi document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write openapi document: %w", err)
	}
	return nil
}
