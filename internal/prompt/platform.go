package prompt

import "github.com/dsaidinesh/adsynth-backedn/internal/domain"

var copyInstructions = map[domain.Platform]string{
	domain.PlatformGeneral: `Create a compelling ad script that:
1. Addresses the key pain points identified
2. Uses language and terminology familiar to the target audience
3. Ties into trending topics when relevant
4. Clearly communicates the product's value proposition
5. Includes a strong call-to-action

Your ad script should be 150-200 words and structured for a social media ad:
- Attention-grabbing opening
- Problem statement
- Solution (product introduction)
- Benefits
- Call-to-action`,

	domain.PlatformInstagram: `Create an Instagram ad script that:
1. Is visually descriptive and engaging
2. Uses concise, impactful language
3. Incorporates relevant hashtags
4. Is optimized for mobile viewing
5. Has a strong CTA that works with Instagram's format

Your Instagram ad should be 100-150 words max and include:
- An attention-grabbing first line that works even when truncated
- Short, punchy sentences that maintain interest
- Visual descriptions that would pair well with imagery
- 3-5 relevant hashtags
- A clear call-to-action that directs to link in bio or swipe up`,

	domain.PlatformYouTube: `Create a YouTube video ad script that:
1. Hooks viewers in the first 5 seconds
2. Maintains engagement throughout
3. Incorporates both visual and audio elements
4. Builds a narrative around the product
5. Ends with a compelling call-to-action

Format your script with timing, visual descriptions, and dialogue:
[0:00-0:05] - Opening hook
[0:05-0:15] - Problem statement
[0:15-0:30] - Product introduction
[0:30-0:45] - Features and benefits
[0:45-0:60] - Testimonial or demonstration
[0:60-0:75] - Call-to-action

Include both visual directions and spoken dialogue in your script, keeping total length to 60-90 seconds.`,

	domain.PlatformVideo: `Create a video ad script that:
1. Captures attention in the first 3 seconds
2. Tells a compelling visual story
3. Demonstrates the product solving a problem
4. Uses both on-screen text and dialogue/voiceover
5. Ends with a clear call-to-action

Format your script with:
[SCENE 1] - Description of visuals and setting
VOICEOVER: "Dialogue here"
ON-SCREEN TEXT: "Text here"

[SCENE 2] - Description of visuals and setting
VOICEOVER: "Dialogue here"
ON-SCREEN TEXT: "Text here"

Keep the script to 30-60 seconds total (3-5 scenes).`,

	domain.PlatformTikTok: `Create a TikTok ad script that:
1. Is extremely concise and attention-grabbing
2. Uses trendy language and references
3. Feels authentic and native to TikTok
4. Can incorporate popular TikTok formats (challenges, before/after, etc.)
5. Is under 30 seconds when read aloud

Format your script with:
[VISUAL]: Brief description of what's shown
[TEXT]: On-screen text
[AUDIO]: Voice or sound description

Keep the entire script to 15-30 seconds maximum. The language should be casual, authentic, and speak directly to TikTok users.`,

	domain.PlatformFacebook: `Create a Facebook ad script that:
1. Works well in the feed format
2. Engages users with questions or relatable statements
3. Clearly communicates benefits and value proposition
4. Includes social proof or testimonial elements
5. Has a clear call-to-action that aligns with Facebook's CTA buttons

Your Facebook ad should be structured as:
- Headline (attention-grabbing, 5-7 words)
- Main ad copy (150-200 words)
- Call-to-action (aligned with Facebook options like "Learn More", "Shop Now", etc.)

Focus on creating a conversational tone that encourages engagement and sharing.`,
}

var reviewCriteria = map[domain.Platform]string{
	domain.PlatformGeneral: `Additional evaluation criteria:
- Does the ad have a clear structure with an opening, problem, solution, benefits, and CTA?
- Is the ad concise yet comprehensive (150-200 words)?
- Does it effectively communicate the product's value proposition?`,

	domain.PlatformInstagram: `Additional evaluation criteria for Instagram:
- Is the ad visually descriptive, helping users imagine the imagery?
- Is it concise enough for Instagram (100-150 words)?
- Does it include relevant hashtags?
- Is the CTA appropriate for Instagram's format?
- Would the opening line work well when truncated in feeds?`,

	domain.PlatformYouTube: `Additional evaluation criteria for YouTube:
- Does the script include proper timing indications [0:00-0:05]?
- Does it hook viewers in the first 5 seconds?
- Is there a clear narrative structure?
- Does it include both visual direction and dialogue/voiceover?
- Is the length appropriate (60-90 seconds)?
- Does the CTA work for a video format?`,

	domain.PlatformVideo: `Additional evaluation criteria for video:
- Is the script formatted correctly with scenes and visual descriptions?
- Does it capture attention in the first 3 seconds?
- Is there a clear visual story being told?
- Are both visuals and dialogue/voiceover included?
- Is the length appropriate (30-60 seconds)?`,

	domain.PlatformTikTok: `Additional evaluation criteria for TikTok:
- Is the ad extremely concise (15-30 seconds when read)?
- Does it use authentic, trendy language appropriate for TikTok?
- Is it formatted with visual, text, and audio directions?
- Does it feel native to the TikTok platform?
- Would it be engaging enough for the TikTok audience?`,

	domain.PlatformFacebook: `Additional evaluation criteria for Facebook:
- Does it include a compelling headline?
- Is the main copy engaging and appropriate length for Facebook?
- Does it encourage engagement (comments, shares)?
- Is there an element of social proof?
- Does the CTA align with Facebook's button options?`,
}

// CopyInstructions returns the writing brief for platform, general for unknown tags.
func CopyInstructions(platform domain.Platform) string {
	return copyInstructions[platform.OrGeneral()]
}

// ReviewCriteria returns the platform review checklist, general for unknown tags.
func ReviewCriteria(platform domain.Platform) string {
	return reviewCriteria[platform.OrGeneral()]
}
