package api

// Tool names used across the planning and research loops.
const (
	// ToolPresentPlan is the planner's single executable tool: surface the
	// proposed plan to the human and suspend for feedback.
	ToolPresentPlan = "present_plan_for_feedback"
	// ToolRegisterFinding is the fixed tool every worker carries for
	// recording observability findings.
	ToolRegisterFinding = "register_finding"
	// ToolHandoff is the supervisor's tool for delegating work to a
	// specialized worker agent.
	ToolHandoff = "handoff_to_agent"
	// ToolCompleteTask is the supervisor's tool for closing out a task.
	ToolCompleteTask = "complete_task"
	// ToolSkipTask is the supervisor's tool for abandoning a task.
	ToolSkipTask = "skip_task"
)

// PresentPlanTool returns the planner's plan-presentation tool schema.
// The section list mirrors the PlanSection model.
func PresentPlanTool() ToolDef {
	return ToolDef{
		Name: ToolPresentPlan,
		Description: "Present the current research plan to the user and request approval or feedback. " +
			"This is your only executable tool: call it immediately after designing any version of the plan, " +
			"then stop and wait for the user's reply.",
		Properties: map[string]interface{}{
			"message": map[string]interface{}{
				"type":        "string",
				"description": "Message to the user explaining the plan and explicitly asking for approval or changes",
			},
			"plan": map[string]interface{}{
				"type":        "object",
				"description": "The complete current plan under review",
				"properties": map[string]interface{}{
					"sections": map[string]interface{}{
						"type":        "array",
						"description": "Report sections ordered by number",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"number":      map[string]interface{}{"type": "integer", "description": "Sequential section number (1, 2, 3, ...)"},
								"title":       map[string]interface{}{"type": "string", "description": "Descriptive section title"},
								"objective":   map[string]interface{}{"type": "string", "description": "Clear objective naming the capabilities the section uses"},
								"description": map[string]interface{}{"type": "string", "description": "Detailed description: tool, parameters, metrics, presentation, analysis"},
							},
							"required": []string{"number", "title", "objective", "description"},
						},
					},
				},
				"required": []string{"sections"},
			},
		},
		Required: []string{"message", "plan"},
	}
}

// RegisterFindingTool returns the worker finding-registration tool schema.
// The reporting agent name is deliberately absent: the framework injects it
// so a worker can never attribute a finding to another agent.
func RegisterFindingTool() ToolDef {
	return ToolDef{
		Name: ToolRegisterFinding,
		Description: "Record an observability finding against the current research task: " +
			"a fact, metric reading, incident, or condition you detected while investigating.",
		Properties: map[string]interface{}{
			"severity": map[string]interface{}{
				"type": "string",
				"enum": []string{"info", "warning", "critical"},
			},
			"description": map[string]interface{}{
				"type":        "string",
				"description": "Detailed description of the finding",
			},
			"namespace": map[string]interface{}{
				"type":        "string",
				"description": "Kubernetes namespace where the finding was detected",
			},
			"resource_type": map[string]interface{}{
				"type": "string",
				"enum": []string{"pod", "deployment", "service", "node", "pvc", "configmap", "secret"},
			},
			"resource_name": map[string]interface{}{
				"type":        "string",
				"description": "Name of the affected resource",
			},
			"metric": map[string]interface{}{
				"type":        "string",
				"description": "Name of the metric behind the finding",
			},
			"metric_value":     map[string]interface{}{"type": "number"},
			"metric_threshold": map[string]interface{}{"type": "number"},
			"metric_unit": map[string]interface{}{
				"type":        "string",
				"description": "Unit of the metric (%, ms, MB, ...)",
			},
			"category": map[string]interface{}{
				"type": "string",
				"enum": []string{"performance", "security", "availability", "cost", "compliance"},
			},
			"impact_level": map[string]interface{}{
				"type": "string",
				"enum": []string{"low", "medium", "high"},
			},
			"urgency": map[string]interface{}{
				"type": "string",
				"enum": []string{"low", "medium", "high", "immediate"},
			},
			"recommendations": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Suggested steps to mitigate or resolve the finding",
			},
			"root_cause": map[string]interface{}{"type": "string"},
			"status": map[string]interface{}{
				"type": "string",
				"enum": []string{"new", "acknowledged", "in_progress", "resolved"},
			},
			"tags": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"confidence": map[string]interface{}{
				"type":        "number",
				"description": "Confidence in the finding, 0 to 1",
			},
		},
		Required: []string{"severity", "description"},
	}
}

// HandoffTool returns the supervisor's delegation tool schema. The agent
// name enum is restricted to the workers actually registered so the model
// cannot hand off to an agent that does not exist.
func HandoffTool(agentNames []string) ToolDef {
	return ToolDef{
		Name: ToolHandoff,
		Description: "Delegate part of the current task to a specialized research agent. " +
			"Write the instruction yourself with the context the agent needs; it does not see " +
			"your conversation beyond the instruction. Issue several calls in one turn to run " +
			"agents in parallel on independent sub-tasks.",
		Properties: map[string]interface{}{
			"agent_name": map[string]interface{}{
				"type":        "string",
				"enum":        agentNames,
				"description": "Registered agent to hand the sub-task to",
			},
			"instruction": map[string]interface{}{
				"type":        "string",
				"description": "Self-contained instruction for the agent, including what to investigate and what to record",
			},
		},
		Required: []string{"agent_name", "instruction"},
	}
}

// CompleteTaskTool returns the supervisor's task-completion tool schema.
func CompleteTaskTool() ToolDef {
	return ToolDef{
		Name:        ToolCompleteTask,
		Description: "Mark the current research task as done once its objective is covered by the recorded findings.",
		Properties: map[string]interface{}{
			"summary": map[string]interface{}{
				"type":        "string",
				"description": "Short summary of what the task established",
			},
		},
		Required: []string{"summary"},
	}
}

// SkipTaskTool returns the supervisor's task-skip tool schema.
func SkipTaskTool() ToolDef {
	return ToolDef{
		Name:        ToolSkipTask,
		Description: "Abandon the current research task when no registered agent can make progress on it.",
		Properties: map[string]interface{}{
			"reason": map[string]interface{}{
				"type":        "string",
				"description": "Why the task cannot be completed",
			},
		},
		Required: []string{"reason"},
	}
}
