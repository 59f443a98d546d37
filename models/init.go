package models

// defaultSequences is the built-in drip catalog every new company starts
// from. Eight sequences across the two pipelines, thirty steps in total.
// Seeded copies are company-owned and independently editable afterwards.
var defaultSequences = []Sequence{
	{
		PipelineID: PipelineSales,
		StageID:    "new_lead",
		Name:       "New Lead Follow-Up",
		IsEnabled:  true,
		Steps: []SequenceStep{
			{
				Position:     1,
				DelayType:    DelayImmediate,
				Channel:      ChannelEmail,
				EmailSubject: "Thanks for reaching out!",
				EmailBody:    "<p>Hi {first_name},</p><p>Thanks for getting in touch. We received your request and one of our team members will call you shortly to talk through the details.</p>",
			},
			{
				Position:  2,
				DelayType: DelayAfter, DelayValue: 1, DelayUnit: UnitHours,
				Channel: ChannelSMS,
				SMSBody: "Hi {first_name}, this is {company_name}. We got your request and will be in touch soon. Reply to this number if you have any questions.",
			},
			{
				Position:  3,
				DelayType: DelayAfter, DelayValue: 1, DelayUnit: UnitDays,
				Channel:      ChannelEmail,
				EmailSubject: "Quick question about your project",
				EmailBody:    "<p>Hi {first_name},</p><p>We tried to reach you yesterday. Is there a good time for a quick call this week?</p>",
			},
			{
				Position:  4,
				DelayType: DelayAfter, DelayValue: 3, DelayUnit: UnitDays,
				Channel:      ChannelBoth,
				EmailSubject: "Still interested?",
				EmailBody:    "<p>Hi {first_name},</p><p>Just checking in — we'd love to help with your project. Book a time that works for you and we'll take it from there.</p>",
				SMSBody:      "Hi {first_name}, still interested in getting that project done? Reply YES and we'll set up a time.",
			},
			{
				Position:  5,
				DelayType: DelayAfter, DelayValue: 1, DelayUnit: UnitWeeks,
				Channel:      ChannelEmail,
				EmailSubject: "We're here when you're ready",
				EmailBody:    "<p>Hi {first_name},</p><p>We'll close out your request for now, but reply any time and we'll pick up right where we left off.</p>",
			},
		},
	},
	{
		PipelineID: PipelineSales,
		StageID:    "contacted",
		Name:       "Stay In Touch",
		IsEnabled:  true,
		Steps: []SequenceStep{
			{
				Position:  1,
				DelayType: DelayAfter, DelayValue: 2, DelayUnit: UnitDays,
				Channel:      ChannelEmail,
				EmailSubject: "Great talking with you",
				EmailBody:    "<p>Hi {first_name},</p><p>Thanks for taking the time to chat. Let us know if any questions came up since — happy to help.</p>",
			},
			{
				Position:  2,
				DelayType: DelayAfter, DelayValue: 4, DelayUnit: UnitDays,
				Channel: ChannelSMS,
				SMSBody: "Hi {first_name}, just following up on our conversation. Want us to put together an estimate?",
			},
			{
				Position:  3,
				DelayType: DelayAfter, DelayValue: 1, DelayUnit: UnitWeeks,
				Channel:      ChannelEmail,
				EmailSubject: "Ready for the next step?",
				EmailBody:    "<p>Hi {first_name},</p><p>We'd love to get you a detailed quote. It only takes a short visit — pick a time and we'll be there.</p>",
			},
			{
				Position:  4,
				DelayType: DelayAfter, DelayValue: 2, DelayUnit: UnitWeeks,
				Channel:      ChannelBoth,
				EmailSubject: "Don't lose your spot",
				EmailBody:    "<p>Hi {first_name},</p><p>Our schedule is filling up for the season. Reply today and we'll make sure you're on it.</p>",
				SMSBody:      "Hi {first_name}, our schedule is filling up fast. Reply to lock in your spot before the season rush.",
			},
		},
	},
	{
		PipelineID: PipelineSales,
		StageID:    "proposals_sent",
		Name:       "Proposal Follow-Up",
		IsEnabled:  true,
		Steps: []SequenceStep{
			{
				Position:  1,
				DelayType: DelayAfter, DelayValue: 2, DelayUnit: UnitHours,
				Channel:      ChannelEmail,
				EmailSubject: "Your proposal is ready",
				EmailBody:    "<p>Hi {first_name},</p><p>Your proposal is attached. Take a look and let us know what you think — we're happy to walk through it together.</p>",
			},
			{
				Position:  2,
				DelayType: DelayAfter, DelayValue: 1, DelayUnit: UnitDays,
				Channel: ChannelSMS,
				SMSBody: "Hi {first_name}, did you get a chance to look over the proposal we sent? Happy to answer any questions.",
			},
			{
				Position:  3,
				DelayType: DelayAfter, DelayValue: 2, DelayUnit: UnitDays,
				Channel:      ChannelEmail,
				EmailSubject: "Any questions about your proposal?",
				EmailBody:    "<p>Hi {first_name},</p><p>Just checking in on the proposal. If anything looks off, we can adjust the scope or pricing — just say the word.</p>",
			},
			{
				Position:  4,
				DelayType: DelayAfter, DelayValue: 4, DelayUnit: UnitDays,
				Channel:      ChannelBoth,
				EmailSubject: "Your proposal expires soon",
				EmailBody:    "<p>Hi {first_name},</p><p>A heads up that the pricing in your proposal is only guaranteed for a limited time. Reply to accept or to talk it through.</p>",
				SMSBody:      "Hi {first_name}, the pricing on your proposal expires soon. Reply YES to accept or call us to discuss.",
			},
		},
	},
	{
		PipelineID: PipelineSales,
		StageID:    "lost",
		Name:       "Win-Back",
		IsEnabled:  true,
		Steps: []SequenceStep{
			{
				Position:  1,
				DelayType: DelayAfter, DelayValue: 2, DelayUnit: UnitWeeks,
				Channel:      ChannelEmail,
				EmailSubject: "We'd love a second chance",
				EmailBody:    "<p>Hi {first_name},</p><p>Sorry we couldn't work together this time. If anything changes, we'd love another shot at earning your business.</p>",
			},
			{
				Position:  2,
				DelayType: DelayAfter, DelayValue: 1, DelayUnit: UnitMonths,
				Channel:      ChannelEmail,
				EmailSubject: "Still thinking about that project?",
				EmailBody:    "<p>Hi {first_name},</p><p>Projects have a way of coming back around. If yours is still on the list, we'd be glad to send over a fresh quote.</p>",
			},
			{
				Position:  3,
				DelayType: DelayAfter, DelayValue: 3, DelayUnit: UnitMonths,
				Channel:      ChannelBoth,
				EmailSubject: "A special offer to welcome you back",
				EmailBody:    "<p>Hi {first_name},</p><p>We'd love to win you back — mention this email and we'll take 10% off your project.</p>",
				SMSBody:      "Hi {first_name}, it's {company_name}. Mention this text for 10% off if you're still planning that project!",
			},
		},
	},
	{
		PipelineID: PipelineJobs,
		StageID:    "scheduled",
		Name:       "Job Scheduled",
		IsEnabled:  true,
		Steps: []SequenceStep{
			{
				Position:     1,
				DelayType:    DelayImmediate,
				Channel:      ChannelBoth,
				EmailSubject: "You're on the schedule!",
				EmailBody:    "<p>Hi {first_name},</p><p>Your job is booked. We'll send a reminder before your crew arrives. Reply to this email if anything changes.</p>",
				SMSBody:      "Hi {first_name}, your job with {company_name} is booked! We'll text you a reminder before we arrive.",
			},
			{
				Position:  2,
				DelayType: DelayAfter, DelayValue: 1, DelayUnit: UnitDays,
				Channel: ChannelSMS,
				SMSBody: "Hi {first_name}, quick note from {company_name}: please make sure we'll have clear access to the work area on job day.",
			},
			{
				Position:  3,
				DelayType: DelayAfter, DelayValue: 3, DelayUnit: UnitDays,
				Channel:      ChannelEmail,
				EmailSubject: "What to expect on job day",
				EmailBody:    "<p>Hi {first_name},</p><p>Here's a quick rundown of what happens on job day, how long it takes, and how to prepare. Questions? Just reply.</p>",
			},
		},
	},
	{
		PipelineID: PipelineJobs,
		StageID:    "in_progress",
		Name:       "Job In Progress",
		IsEnabled:  true,
		Steps: []SequenceStep{
			{
				Position:  1,
				DelayType: DelayAfter, DelayValue: 30, DelayUnit: UnitMinutes,
				Channel: ChannelSMS,
				SMSBody: "Hi {first_name}, the crew is underway! Your project manager will text updates here. Reply any time with questions.",
			},
			{
				Position:  2,
				DelayType: DelayAfter, DelayValue: 2, DelayUnit: UnitDays,
				Channel:      ChannelEmail,
				EmailSubject: "How's the work going so far?",
				EmailBody:    "<p>Hi {first_name},</p><p>We like to check in mid-job. If anything isn't meeting your expectations, reply now and we'll make it right before we wrap up.</p>",
			},
		},
	},
	{
		PipelineID: PipelineJobs,
		StageID:    "completed",
		Name:       "Job Completed",
		IsEnabled:  true,
		Steps: []SequenceStep{
			{
				Position:     1,
				DelayType:    DelayImmediate,
				Channel:      ChannelEmail,
				EmailSubject: "Thank you for choosing us!",
				EmailBody:    "<p>Hi {first_name},</p><p>Your job is complete — thank you for trusting us with it. Your warranty details and final invoice are attached.</p>",
			},
			{
				Position:  2,
				DelayType: DelayAfter, DelayValue: 1, DelayUnit: UnitDays,
				Channel: ChannelSMS,
				SMSBody: "Hi {first_name}, thanks again for choosing {company_name}! Would you leave us a quick review? It really helps: {review_link}",
			},
			{
				Position:  3,
				DelayType: DelayAfter, DelayValue: 3, DelayUnit: UnitDays,
				Channel:      ChannelEmail,
				EmailSubject: "How did we do?",
				EmailBody:    "<p>Hi {first_name},</p><p>We'd love your feedback on the finished work. A review takes a minute and means the world to our crew: {review_link}</p>",
			},
			{
				Position:  4,
				DelayType: DelayAfter, DelayValue: 1, DelayUnit: UnitWeeks,
				Channel:      ChannelEmail,
				EmailSubject: "Everything still looking good?",
				EmailBody:    "<p>Hi {first_name},</p><p>It's been a week since we finished up. If anything needs a touch-up, reply and we'll schedule a free follow-up visit.</p>",
			},
			{
				Position:  5,
				DelayType: DelayAfter, DelayValue: 1, DelayUnit: UnitMonths,
				Channel:      ChannelBoth,
				EmailSubject: "A referral from you goes a long way",
				EmailBody:    "<p>Hi {first_name},</p><p>Know someone who needs work done? Refer a friend and you'll both get a discount on your next project.</p>",
				SMSBody:      "Hi {first_name}, refer a friend to {company_name} and you both get a discount on your next project!",
			},
		},
	},
	{
		PipelineID: PipelineJobs,
		StageID:    "follow_up",
		Name:       "Maintenance Follow-Up",
		IsEnabled:  true,
		Steps: []SequenceStep{
			{
				Position:  1,
				DelayType: DelayAfter, DelayValue: 2, DelayUnit: UnitWeeks,
				Channel:      ChannelEmail,
				EmailSubject: "Keeping your investment in top shape",
				EmailBody:    "<p>Hi {first_name},</p><p>A little upkeep goes a long way. Here are our seasonal maintenance tips for the work we completed.</p>",
			},
			{
				Position:  2,
				DelayType: DelayAfter, DelayValue: 1, DelayUnit: UnitMonths,
				Channel: ChannelSMS,
				SMSBody: "Hi {first_name}, it's {company_name}. Time for a maintenance check? Reply YES and we'll get you scheduled.",
			},
			{
				Position:  3,
				DelayType: DelayAfter, DelayValue: 3, DelayUnit: UnitMonths,
				Channel:      ChannelEmail,
				EmailSubject: "Seasonal check-up reminder",
				EmailBody:    "<p>Hi {first_name},</p><p>The season is changing — a quick inspection now can prevent expensive surprises later. Want us to swing by?</p>",
			},
			{
				Position:  4,
				DelayType: DelayAfter, DelayValue: 6, DelayUnit: UnitMonths,
				Channel:      ChannelBoth,
				EmailSubject: "It's been a while!",
				EmailBody:    "<p>Hi {first_name},</p><p>It's been six months since your last service. Book an annual check-up and we'll honor your original customer pricing.</p>",
				SMSBody:      "Hi {first_name}, it's been 6 months since your {company_name} service. Book an annual check-up at your original pricing!",
			},
		},
	},
}

// DefaultCatalog returns an independent copy of the built-in sequence
// catalog. Callers may mutate the result freely; the catalog itself is
// loaded once and never changes at runtime.
func DefaultCatalog() []Sequence {
	out := make([]Sequence, len(defaultSequences))
	for i, seq := range defaultSequences {
		steps := make([]SequenceStep, len(seq.Steps))
		copy(steps, seq.Steps)
		seq.Steps = steps
		out[i] = seq
	}
	return out
}
