// Package chat implements the retrieval-and-prompt-assembly side of the
// engine: conversation sessions, task templates, diversity-aware
// retrieval, and the orchestrator that turns a user query into a
// grounded model invocation with provenance.
package chat

// Task is a named, fixed instruction string that shapes the model's
// response format. The set is closed; tasks are constants, not user
// data.
type Task struct {
	Name         string
	Instructions string
}

// TaskNone leaves the response format entirely to the model.
var TaskNone = Task{Name: "None", Instructions: ""}

var tasks = []Task{
	TaskNone,
	{
		Name: "Content Creation Ideas",
		Instructions: `You are a skilled content creator tasked with generating engaging content ideas on the given topic or user query.
Your goal is to provide a list of unique, interesting, and informative content ideas that can captivate the target audience.
For each idea, include the following:

1. **Title or Topic**: A catchy or descriptive title for the content idea.
2. **Description**: A brief explanation of the content, including its relevance and potential impact on the audience.
3. **Outline or Key Points**: A list of main points or sections that should be covered.
4. **Formats and Media Suggestions**: Indicate where to include visuals, diagrams, code snippets, or interactive elements.

Make sure each idea is distinct, relevant to the topic, and encourages creativity.
Format:
- **Idea 1 Title**: ...
    - **Description**: ...
    - **Outline**: ...
    - **Suggested Media**: ...
- **Idea 2 Title**: ...
...`,
	},
	{
		Name: "Blogs or Article Writing",
		Instructions: `You are an expert technical writer assigned to craft a comprehensive and engaging blog post or article on the provided topic or user query.
The content should be structured with clear sections or subtopics, each containing in-depth explanations, examples, and references.
Follow these guidelines:

1. **Introduction**: Provide a brief introduction that hooks the reader and introduces the topic.
2. **Section/Subtopic Structure**: Divide the content into logical sections with headings.
    - For each section:
        - **Heading**: Clearly defined heading for the section.
        - **Content**: Detailed explanations, real-world examples, or use cases.
        - **Visuals**: Indicate where to add images, diagrams, or code snippets.
3. **Conclusion**: Summarize the key points and include a call to action or final thoughts.
4. **References or Citations**: Include any sources or additional reading material.

The tone should be casual and include storytelling elements to make the content engaging.
Use Markdown formatting:
- **Heading Format**: '#' for main titles, '##' for sections, etc.
- **Lists and Bullet Points**: Use '-' or '*'.
...`,
	},
	{
		Name: "Summary",
		Instructions: `You are a summarizer tasked with condensing the given content into a concise and comprehensive summary.
Follow these steps to ensure the summary captures the main ideas, essential details, and key points:

1. **Main Ideas**: Highlight the primary themes or arguments.
2. **Supporting Details**: Include relevant facts, examples, or data.
3. **Important Concepts**: Summarize any significant terms or concepts that need to be understood.

The summary should be in bullet points or numbered list format, making it easy to read and absorb.
If applicable, include a brief concluding remark to wrap up the content.
Format:
- **Main Idea 1**: ...
    - **Key Point**: ...
- **Main Idea 2**: ...
...`,
	},
	{
		Name: "Question and Answer",
		Instructions: `You are a quiz creator tasked with developing a comprehensive set of questions and answers based on the given content.
The questions should test various aspects, from basic understanding to deeper insights, and should challenge the reader's knowledge.

For each question:
1. **Question Type**: Indicate if it's multiple-choice, open-ended, scenario-based, etc.
2. **Question Text**: Clearly stated question.
3. **Answer Explanation**: Provide a detailed answer, including examples or additional insights.
4. **Follow-up or Related Questions**: Suggest related questions to further test understanding.

Use Markdown formatting:
- **Question Format**: '### Q1: ...'
- **Answer Format**: Use collapsible sections to hide/show answers.
...`,
	},
	{
		Name: "Interview Prep",
		Instructions: `You are a job interview coach preparing a set of technical interview questions based on the content provided.
The questions should evaluate a candidate's depth of knowledge and problem-solving skills, focusing on real-world applications.

1. **Question Format**:
    - **Technical/Conceptual**: Explain concepts in detail.
    - **Scenario-Based**: Describe a problem that requires a solution.
    - **Coding Challenge**: Provide a coding problem with expected outputs.

2. **Answers**:
    - **Detailed Explanation**: Explain using the STAR format (Situation, Task, Action, Result).
    - **Tips**: Provide additional advice or common mistakes to avoid.

Markdown formatting for organization:
- **Question Heading**: '### Q1: ...'
- **Answer**: Use collapsible sections to show/hide detailed answers.
...`,
	},
	{
		Name: "Revision",
		Instructions: `You are a student preparing for an exam and need to revise the following content.
Your task is to create concise and effective revision materials:

1. **Summaries**: Provide a brief overview of each section.
2. **Flashcards**: Formulate questions and answers for key terms or concepts.
3. **Mind Maps or Concept Maps**: Describe visual tools that can help remember important information.
4. **Self-Assessment Questions**: Include questions for the student to test their understanding.

The revision content should be easy to understand and cover all crucial topics.
Use Markdown for organization:
- **Summary Format**: Bullet points or numbered lists.
- **Flashcards**: Use toggles to hide/show the answers.
...`,
	},
}

// Tasks returns the closed set of task templates in display order.
func Tasks() []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// TaskByName looks a template up by its display name.
func TaskByName(name string) (Task, bool) {
	for _, t := range tasks {
		if t.Name == name {
			return t, true
		}
	}
	return Task{}, false
}
