package prompt

import "fmt"

// analysisTemplate asks for the JSON shape decoded by analysis.Normalize.
// Fields: resume text, job description.
const analysisTemplate = `You are an expert ATS (Applicant Tracking System) analyzer. Analyze the following resume against the job description in detail.

Resume:
%s

Job Description:
%s

Provide a comprehensive analysis including:
1. Calculate a match score (0-100) based on skills, experience, and qualifications alignment
2. List all matched skills and experiences found in both the resume and job description
3. Identify missing or weak keywords that are important for the role
4. Provide specific suggestions to improve the resume's alignment with the job
5. Share key insights about the application's strengths and areas for improvement

Format your response as a JSON object with the following structure:
{
    "match_score": <number between 0 and 100>,
    "matched_skills": ["skill1", "skill2", ...],
    "missing_skills": ["skill1", "skill2", ...],
    "suggestions": ["suggestion1", "suggestion2", ...],
    "insights": ["insight1", "insight2", ...]
}

IMPORTANT: Wrap your JSON response in ` + "```json```" + ` code blocks.
Be thorough in your analysis and provide actionable feedback.
`

// BuildAnalysis renders the single user message sent to the model.
// Same inputs always give the same prompt.
func BuildAnalysis(resumeText, jobDescription string) string {
	return fmt.Sprintf(analysisTemplate, resumeText, jobDescription)
}
