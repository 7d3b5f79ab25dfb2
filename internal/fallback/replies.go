package fallback

const skillsReply = `Sreeshanth has expertise in:
• **Languages**: Python (expert), JavaScript, TypeScript, C, SQL
• **Frontend**: React.js, Next.js, Tailwind CSS, Three.js
• **Backend**: Node.js, FastAPI, Firebase, Supabase, REST APIs
• **AI/ML**: PyTorch, TensorFlow, OpenCV, LLMs, RAG, LangChain, Computer Vision
• **DevOps**: Docker, Kubernetes, AWS, PostgreSQL, Neo4j, Git
• **Certifications**: AWS Cloud Practitioner, Microsoft AI Product Manager`

const experienceReply = `Sreeshanth's experience:
• **Nov 2024-Present**: Testing & Developer Intern at Interview Companion (ICMS)
  - Building AI job application features with Python
  - Testing web-based interview management system
• **Mar-Jun 2024**: Software Engineering Intern at Koluvu Company
  - AI-driven interview tools with Python & React
  - Improved system reliability by 25%
• **Education**: B.Tech in CS & Business Systems at VNR VJIET (CGPA: 8.05/10)`

const projectsReply = `Notable projects by Sreeshanth:
• **Underwater Obstruction Detection** (₹15L Govt. Funded): YOLOv11-based marine safety system with 94% accuracy on 15K+ images
• **OpStream - OSINT Platform**: FastAPI + React platform for discovering GitHub issues with vector search
• **NEXUS - GraphRAG Platform**: LangGraph + Neo4j knowledge platform with <500ms inference`

const contactReply = `You can reach Sreeshanth through:
• **Email**: peddisreeshanth18@gmail.com
• **Phone**: +91 90528 34976
• **LinkedIn**: linkedin.com/in/sreeshanthpeddi
• **GitHub**: github.com/P-Sreeshanth
• **Location**: Hyderabad, India`

const availabilityReply = `Sreeshanth is currently **available for opportunities**! He's open to:
• Full-time positions (graduating May 2026)
• Internships
• Freelance AI/ML and Full Stack projects
• Interesting collaborations`

const frontendReply = `Sreeshanth has strong React experience:
• Building full-stack applications with React & Next.js
• Interview management system at ICMS
• AI-driven tools at Koluvu Company
• NEXUS platform with Next.js and Three.js`

const aiReply = `Sreeshanth's AI/ML expertise:
• **Computer Vision**: Built YOLOv11-based underwater detection (₹15L funded)
• **RAG Systems**: NEXUS platform with LangGraph and self-correcting RAG
• **LLMs**: Experience with Groq, OpenAI, vector databases (Qdrant, Neo4j)
• **PyTorch & TensorFlow**: Deep learning implementations`

const achievementsReply = `Sreeshanth's achievements:
• **₹15L MSME Government Funding** for Underwater Detection project
• **Mr. VNR 2024 Winner** & **Mr. SNIST 2024 Winner**
• **TEDxVNRVJIET Event Organizer Head** - Led 20+ volunteers
• **NMMS Scholar** - Government scholarship for academic excellence
• **AWS Cloud Practitioner** & **Microsoft AI PM** certifications`

const greetingReply = "Hello! 👋 I'm here to help you learn more about Sreeshanth. He's a CS undergrad with expertise in AI/ML and Full Stack development. What would you like to know?"

const defaultReply = `I'm Sreeshanth's AI assistant! I can help you learn about:
• His **skills** (Python, AI/ML, Full Stack)
• **Work experience** and internships
• **Projects** (including ₹15L govt-funded AI project)
• **Achievements** and certifications
• How to **contact** him
• His **availability** for opportunities

What would you like to know?`
