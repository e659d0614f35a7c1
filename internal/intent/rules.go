package intent

// Topic identifies which rule produced a Block.
type Topic string

const (
	TopicGreeting        Topic = "greeting"
	TopicHelp            Topic = "help"
	TopicTemplate        Topic = "template"
	TopicConversion      Topic = "conversion"
	TopicTroubleshooting Topic = "troubleshooting"
	TopicStructure       Topic = "structure"
	TopicAdvanced        Topic = "advanced"
	TopicThanks          Topic = "thanks"
	TopicSuggestion      Topic = "suggestion"
	TopicFallback        Topic = "fallback"
)

type rule struct {
	topic    Topic
	keywords []string
	text     string
}

// rules are evaluated in order and every match contributes a block.
var rules = []rule{
	{
		topic:    TopicGreeting,
		keywords: []string{"hi", "hello", "hey", "greetings", "hola"},
		text:     "Hello! How can I assist you with the data conversion tool today?",
	},
	{
		topic:    TopicHelp,
		keywords: []string{"help", "assist", "support", "guide", "tutorial", "howto", "how to", "documentation"},
		text: `I can help you with:
- Creating custom Excel templates (add columns, set formats)
- Converting Excel/CSV to JSON
- Flattening nested data structures
- Troubleshooting conversion issues
- Understanding template requirements`,
	},
	{
		topic: TopicTemplate,
		keywords: []string{"template", "create", "make", "excel", "sheet", "spreadsheet", "design",
			"build", "generate", "new", "column", "header"},
		text: `Template Creation Guide:
1. Go to 'Create Template'
2. Add your columns with names and optional sample values
3. Generate and save the template
4. Fill it with your data
5. Load it back to convert to JSON

Pro Tip: Use descriptive column names like 'PolicyId' or 'MonthlyAllowance'`,
	},
	{
		topic: TopicConversion,
		keywords: []string{"convert", "excel", "csv", "json", "upload", "download", "transform",
			"change", "export", "import"},
		text: `File Conversion Guide:
1. Pick your Excel/CSV file in 'Convert File'
2. View the preview in table or JSON format
3. Save the converted JSON or CSV

Supported formats: .xlsx, .xls, .csv
Max file size: 200MB`,
	},
	{
		topic:    TopicTroubleshooting,
		keywords: []string{"error", "problem", "issue", "bug", "fix", "trouble", "not working", "fail"},
		text: `Troubleshooting Guide:
Common issues and solutions:
- File not loading: Check format (.xlsx, .xls, .csv) and size
- Encoding problems: Save CSV as UTF-8
- Blank output: Check your file has data below headers
- Column mismatch: Keep header row unchanged`,
	},
	{
		topic:    TopicStructure,
		keywords: []string{"structure", "format", "schema", "layout", "design", "flatten", "nested"},
		text: `Data Structure Information:
- The converter creates flattened JSON (no nested structures)
- Each Excel row becomes a JSON object
- Column headers become JSON keys
- Empty cells become null values

Example: Excel becomes {"PolicyId":"01","Role":"ResearchAssistant"}`,
	},
	{
		topic:    TopicAdvanced,
		keywords: []string{"advanced", "special", "custom", "validation", "dropdown", "formula"},
		text: `Advanced Features:
- Add data validation in Excel (dropdowns, number ranges)
- Use formulas for calculated fields
- Format dates consistently (YYYY-MM-DD recommended)
- For complex structures, pre-flatten your data

Note: Formulas are calculated before conversion`,
	},
	{
		topic:    TopicThanks,
		keywords: []string{"thanks", "thank", "appreciate", "grateful"},
		text:     "You're welcome! Let me know if you need anything else.",
	},
}

// synonyms map a suggested topic word to the words that hint at it.
var synonyms = map[string][]string{
	"convert":  {"change", "transform", "export"},
	"template": {"form", "sheet", "design"},
	"error":    {"problem", "issue", "bug"},
}

const fallbackText = `I'm not sure I understand. Try asking about:
- Creating templates
- Converting files
- Troubleshooting issues
- Data formatting requirements`

// FAQ is the fixed list of common questions shown next to the responder.
var FAQ = []FAQSection{
	{
		Title: "Template Creation",
		Entries: []FAQEntry{
			{"How do I create a template?", "Go to 'Create Template' and add your columns with optional sample values."},
			{"Can I add data validation?", "Yes, set up validation rules in Excel after saving the template."},
			{"What column names should I use?", `Use descriptive names like "PolicyId", "Role", "MonthlyAllowance".`},
		},
	},
	{
		Title: "File Conversion",
		Entries: []FAQEntry{
			{"How do I convert Excel to JSON?", "Pick your file in 'Convert File' and save the JSON output."},
			{"What file formats are supported?", "Excel (.xlsx, .xls) and CSV files."},
			{"How is nested data handled?", "The converter creates flattened structures (no nested objects/arrays)."},
		},
	},
	{
		Title: "Troubleshooting",
		Entries: []FAQEntry{
			{"My file isn't loading", "Check the file format and size (max 200MB). For CSV, ensure UTF-8 encoding."},
			{"The output looks wrong", "Verify your Excel headers match exactly with the template columns."},
			{"Dates aren't converting properly", "Format dates consistently in Excel before converting."},
		},
	},
}

type FAQSection struct {
	Title   string     `json:"title"`
	Entries []FAQEntry `json:"entries"`
}

type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
