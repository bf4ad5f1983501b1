package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	tableModuleProgress   = "module_progress"
	tableProgressEvents   = "progress_events"
	tableAssessmentResult = "assessment_results"
	tableLLMEvents        = "llm_request_events"
)

var (
	moduleProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "course_id", Type: field.TypeString},
		{Name: "module_id", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "theory_completed", Type: field.TypeBool, Default: false},
		{Name: "video_completed", Type: field.TypeBool, Default: false},
		{Name: "quiz_score", Type: field.TypeInt, Nullable: true},
		{Name: "quiz_answers", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "project_status", Type: field.TypeString},
		{Name: "deployed_link", Type: field.TypeString, Default: ""},
		{Name: "github_link", Type: field.TypeString, Default: ""},
		{Name: "updated_at", Type: field.TypeTime},
	}
	moduleProgressTable = &schema.Table{
		Name:       tableModuleProgress,
		Columns:    moduleProgressColumns,
		PrimaryKey: []*schema.Column{moduleProgressColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "moduleprogress_learner_id_course_id_module_id",
				Unique:  true,
				Columns: []*schema.Column{moduleProgressColumns[1], moduleProgressColumns[2], moduleProgressColumns[3]},
			},
		},
	}

	progressEventColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "course_id", Type: field.TypeString},
		{Name: "module_id", Type: field.TypeString},
		{Name: "trigger_name", Type: field.TypeString},
		{Name: "from_stage", Type: field.TypeString},
		{Name: "to_stage", Type: field.TypeString},
		{Name: "quiz_score", Type: field.TypeInt, Nullable: true},
	}
	progressEventTable = &schema.Table{
		Name:       tableProgressEvents,
		Columns:    progressEventColumns,
		PrimaryKey: []*schema.Column{progressEventColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "progressevent_learner_id_course_id",
				Columns: []*schema.Column{progressEventColumns[3], progressEventColumns[4]},
			},
		},
	}

	assessmentResultColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString, Unique: true},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "role", Type: field.TypeString},
		{Name: "company", Type: field.TypeString},
		{Name: "level", Type: field.TypeString},
		{Name: "overall", Type: field.TypeInt},
		{Name: "alignment", Type: field.TypeInt},
		{Name: "band", Type: field.TypeString},
		{Name: "sections", Type: field.TypeString, Size: 2147483647},
		{Name: "strengths", Type: field.TypeString, Size: 2147483647},
		{Name: "weaknesses", Type: field.TypeString, Size: 2147483647},
	}
	assessmentResultTable = &schema.Table{
		Name:       tableAssessmentResult,
		Columns:    assessmentResultColumns,
		PrimaryKey: []*schema.Column{assessmentResultColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "assessmentresult_learner_id",
				Columns: []*schema.Column{assessmentResultColumns[4]},
			},
		},
	}

	llmEventColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Default: "", Size: 2147483647},
		{Name: "response_body", Type: field.TypeString, Default: "", Size: 2147483647},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "learner_id", Type: field.TypeString, Default: ""},
	}
	llmEventTable = &schema.Table{
		Name:       tableLLMEvents,
		Columns:    llmEventColumns,
		PrimaryKey: []*schema.Column{llmEventColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_purpose",
				Columns: []*schema.Column{llmEventColumns[5]},
			},
			{
				Name:    "llmrequestevent_session_id",
				Columns: []*schema.Column{llmEventColumns[13]},
			},
		},
	}

	// Tables holds every table the store migrates.
	Tables = []*schema.Table{
		moduleProgressTable,
		progressEventTable,
		assessmentResultTable,
		llmEventTable,
	}
)
