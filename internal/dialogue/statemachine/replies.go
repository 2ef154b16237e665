package statemachine

// Opening lines shown when a session starts.
var Greeting = []string{
	"Hey there, dreamer! I'm CareerVihari AI, your guide to unlocking an amazing career path! 🚀",
	"I can't wait to get to know you better—what's your name? 🌟",
}

const (
	replyGoodbye     = "Goodbye! Have a great day!"
	replyStagePrompt = "Thank you, %s! Now, please select your educational stage:"

	replyNameAccepted = "Arey %s, what a cool name! Please give me your email next, okay?"
	replyNameMissing  = "Sorry, I didn’t get that! Can you tell me your name to start?"

	replyEmailAccepted = "Thanks for sharing, %s! Let me check… is this correct: %s?"
	replyEmailInvalid  = "Oops, that doesn’t look like a proper email. Can you try again?"

	replyUseStageButtons = "Please use the buttons to select your educational stage (Post-10th, Post-12th, Undergraduate, or Postgraduate)."

	replyStagePost10th      = "Congrats on finishing 10th, %s! Do you know which group you want to take, or do you need help deciding?"
	replyStagePost12th      = "Congrats on finishing 12th! What’s your stream?"
	replyStageUndergraduate = "Welcome, undergrad! What’s your major, and what year are you in?"
	replyStagePostgraduate  = "You’re a postgraduate—impressive! What’s your field of study?"

	replyUndergraduateForm    = "Great to know, %s! You’re a %s %s student. Are you enjoying your course?"
	replyPostgraduateForm     = "Sweet, %s it is! What’s on your mind—career or research? Check out [ResearchGate](https://www.researchgate.net) for research insights."
	replyUseUndergraduateForm = "Please fill in the form with your major and year of study."
	replyUsePostgraduateForm  = "Please fill in the form with your field of study."

	replyPost10thKnowsGroup = "Great, %s! Which group are you thinking of taking—MPC, BiPC, or Commerce?"
	replyPost10thNoNeed     = "Okay, %s! It sounds like you might not be ready to decide yet. Do you want to explore some career paths, or would you like to know more about the groups you can choose after 10th (like MPC, BiPC, or Commerce)?"
	replyPost10thHelp       = "Let’s explore your options, %s! After 10th, you can choose groups like MPC (Maths, Physics, Chemistry), BiPC (Biology, Physics, Chemistry), or Commerce. Which one are you interested in, or do you want to know more about them?"

	replyClarifyCareers = "Great! Let’s explore some career paths. After 10th, you can choose groups like MPC (leads to engineering, architecture), BiPC (leads to medicine, biotechnology), or Commerce (leads to accounting, business). Which one sounds interesting to you?"
	replyClarifyGroups  = "Let’s dive deeper! After 10th, you can choose MPC (Maths, Physics, Chemistry), BiPC (Biology, Physics, Chemistry), or Commerce. Which one are you interested in, or do you want to know more about them?"

	replyGroupChosen  = "Cool, you're a %s student! What would you like to know—careers, exams, or something else? Explore [Official Website](https://example.com) for resources."
	replyGroupMissing = "Please choose a group: MPC, BiPC, or Commerce. Or let me know if you want more details about them!"

	replyStreamCareers = "Lots of career options for you, %s! With your background, you can look into %s. Want more details? Check out [National Career Service](https://www.ncs.gov.in) for job opportunities."
	replyStreamEAPCET  = "AP EAPCET is the new name for EAMCET in Andhra, %s! It’s for engineering, agri, and pharmacy courses after 12th. You need PCM for engineering, PCB for others. Exam’s in May—start with 12th books! Want prep hacks? Check out [AP EAPCET Official Website](https://cets.apsche.ap.gov.in/EAPCET)."
	replyStreamPOLYCET = "AP POLYCET is a great option for you, %s! It’s an entrance exam for polytechnic diploma courses in Andhra Pradesh after 10th. You can pursue diplomas in engineering fields like Mechanical, Civil, or Electrical with your MPC background. The exam usually happens around April-May. Want to know more? Check out [AP POLYCET Official Website](https://polycetap.nic.in)."

	replyStreamAccepted  = "Yay, %s! This can lead to %s. What’s next—career options or entrance exams?"
	replyStreamUnknown   = "I’m not sure about that stream. Could you specify MPC, BiPC, Commerce, or another stream?"
	replyStreamMentioned = "Yes, you mentioned your stream is %s. What would you like to know about it?"

	replyPostgraduateCareer   = "With an %s background, you can explore roles like management consultant, business analyst, or entrepreneur! Want to explore job opportunities? Check out [LinkedIn](https://www.linkedin.com) for career options."
	replyPostgraduateResearch = "Research in %s is a great choice! You can dive into areas like organizational behavior, finance, or marketing strategies. Check out [ResearchGate](https://www.researchgate.net) for research insights."

	replyEnjoyingCourse    = "Awesome, %s! I’m glad you’re enjoying your %s course. What’s next—jobs, internships, or further studies?"
	replyNotEnjoyingCourse = "Oh no, you’re not liking it? Let’s explore options for a %s %s student—jobs, internships, or further studies? Check out [Internshala](https://internshala.com) for opportunities."
	replyEnjoymentUnclear  = "I’m not sure if you’re enjoying your course or not. Could you say 'yes' or 'no'?"

	replyUndergraduateInternships = "Internships are a great way to get hands-on experience as a %s %s student, %s! Check out [Internshala](https://internshala.com) for openings."
	replyUndergraduateJobs        = "For jobs, %s, start building a portfolio around %s and explore openings on [National Career Service](https://www.ncs.gov.in) and [LinkedIn](https://www.linkedin.com)."
	replyUndergraduateStudies     = "After %s, you could pursue %s. Want to know about entrance exams for it?"
)
